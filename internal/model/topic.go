package model

import "time"

// Topic is a grouping of objectives within a single subject.
type Topic struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	SubjectID int       `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTopicRequest is the payload for creating a topic.
type CreateTopicRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	SubjectID int    `json:"subject_id" binding:"required,min=1"`
}

// UpdateTopicRequest is the payload for renaming a topic.
type UpdateTopicRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}
