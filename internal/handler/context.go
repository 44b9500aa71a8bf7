package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BigPoppaG/CourseMe/internal/middleware"
	"github.com/BigPoppaG/CourseMe/internal/model"
	"github.com/BigPoppaG/CourseMe/internal/response"
	"github.com/BigPoppaG/CourseMe/internal/service"
)

// currentUser loads the authenticated user for the request. On failure it
// writes the error response and returns nil; the caller just returns.
func currentUser(c *gin.Context, users *service.UserService) *model.User {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil
	}

	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return nil
	}
	return user
}
