package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BigPoppaG/CourseMe/internal/response"
	"github.com/BigPoppaG/CourseMe/internal/service"
)

// LectureHandler handles lecture material uploads.
type LectureHandler struct {
	lectureService *service.LectureService
}

// NewLectureHandler creates a new LectureHandler.
func NewLectureHandler(lectureService *service.LectureService) *LectureHandler {
	return &LectureHandler{lectureService: lectureService}
}

// Upload godoc
// POST /api/v1/lectures/upload
// Uploads a lecture file and returns its URL for use as a module's
// material path.
func (h *LectureHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	url, err := h.lectureService.SaveUpload(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}
