package model

import "time"

// Objective is a named, subject-scoped skill with zero or more prerequisite
// objectives. The prerequisite relation forms a directed acyclic graph; the
// service layer rejects any change that would close a cycle.
type Objective struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	SubjectID   int       `json:"subject_id"`
	TopicID     *int      `json:"topic_id,omitempty"`
	CreatedByID int       `json:"created_by_id"`
	TimeCreated time.Time `json:"time_created"`
	LastUpdated time.Time `json:"last_updated"`

	// Prerequisites holds the directly required objectives. Nested
	// prerequisite sets are not populated.
	Prerequisites []Objective `json:"prerequisites,omitempty"`
}

// PrerequisiteNames returns the names of the direct prerequisites.
func (o *Objective) PrerequisiteNames() []string {
	names := make([]string, len(o.Prerequisites))
	for i, p := range o.Prerequisites {
		names[i] = p.Name
	}
	return names
}

// PrerequisiteEdge is a single directed "requires" link between two
// objectives, as stored in the edge table.
type PrerequisiteEdge struct {
	ObjectiveID    int
	PrerequisiteID int
}

// CreateObjectiveRequest is the payload for creating an objective.
// Prerequisites are referenced by name; they must resolve within the
// acting user's visible set.
type CreateObjectiveRequest struct {
	Name          string   `json:"name" binding:"required,min=2,max=120"`
	Prerequisites []string `json:"prerequisites" binding:"omitempty,dive,required"`
	TopicID       *int     `json:"topic_id" binding:"omitempty,min=1"`
	SubjectID     int      `json:"subject_id" binding:"required,min=1"`
}

// UpdateObjectiveRequest is the payload for updating an objective.
// The owning subject is immutable and therefore absent. ID comes from the
// URL path, not the body.
type UpdateObjectiveRequest struct {
	ID            int      `json:"-"`
	Name          string   `json:"name" binding:"required,min=2,max=120"`
	Prerequisites []string `json:"prerequisites" binding:"omitempty,dive,required"`
	TopicID       *int     `json:"topic_id" binding:"omitempty,min=1"`
}

// RemoveObjectiveRequest is the payload for removing an adopted objective
// from a student's tracked set.
type RemoveObjectiveRequest struct {
	ObjectiveID int `json:"objective_id" binding:"required,min=1"`
	StudentID   int `json:"student_id" binding:"required,min=1"`
	TutorID     int `json:"tutor_id" binding:"required,min=1"`
}
