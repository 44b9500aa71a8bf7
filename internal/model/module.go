package model

import "time"

// MaterialSource identifies where a module's lecture material lives.
type MaterialSource string

const (
	MaterialSourceYoutube MaterialSource = "youtube"
	MaterialSourceUpload  MaterialSource = "upload"
)

// Module is a unit of lecture content covering a set of objectives.
type Module struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Notes          string         `json:"notes"`
	AuthorID       int            `json:"author_id"`
	SubjectID      int            `json:"subject_id"`
	MaterialSource MaterialSource `json:"material_source"`
	MaterialPath   string         `json:"material_path"`
	Votes          int            `json:"votes"`
	TimeCreated    time.Time      `json:"time_created"`
	LastUpdated    time.Time      `json:"last_updated"`

	// Objectives holds the names of the objectives this module covers.
	Objectives []string `json:"objectives,omitempty"`
}

// CreateModuleRequest is the payload for creating a lecture module.
// Objectives are referenced by name and must resolve within the author's
// visible set.
type CreateModuleRequest struct {
	Name           string         `json:"name" binding:"required,min=2,max=120"`
	Description    string         `json:"description" binding:"omitempty,max=2000"`
	Notes          string         `json:"notes" binding:"omitempty,max=10000"`
	SubjectID      int            `json:"subject_id" binding:"required,min=1"`
	MaterialSource MaterialSource `json:"material_source" binding:"required,oneof=youtube upload"`
	MaterialPath   string         `json:"material_path" binding:"required,max=500"`
	Objectives     []string       `json:"objectives" binding:"omitempty,dive,required"`
}

// UpdateModuleRequest is the payload for updating a lecture module.
type UpdateModuleRequest struct {
	Name           string         `json:"name" binding:"required,min=2,max=120"`
	Description    string         `json:"description" binding:"omitempty,max=2000"`
	Notes          string         `json:"notes" binding:"omitempty,max=10000"`
	MaterialSource MaterialSource `json:"material_source" binding:"required,oneof=youtube upload"`
	MaterialPath   string         `json:"material_path" binding:"required,max=500"`
	Objectives     []string       `json:"objectives" binding:"omitempty,dive,required"`
}

// VoteRequest is the payload for voting on a module.
type VoteRequest struct {
	Vote int `json:"vote" binding:"min=0,max=5"`
}
