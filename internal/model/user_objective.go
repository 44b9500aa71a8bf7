package model

import "time"

// UserObjective is an adoption record linking a student, the tutor who
// manages that adoption, and the objective being tracked.
type UserObjective struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"student_id"`
	TutorID     int       `json:"tutor_id"`
	ObjectiveID int       `json:"objective_id"`
	Assessment  int       `json:"assessment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssignObjectiveRequest is the payload for a tutor assigning an objective
// to a student.
type AssignObjectiveRequest struct {
	ObjectiveID int `json:"objective_id" binding:"required,min=1"`
	StudentID   int `json:"student_id" binding:"required,min=1"`
}

// AssessObjectiveRequest is the payload for recording an assessment level
// on an adopted objective.
type AssessObjectiveRequest struct {
	ObjectiveID int `json:"objective_id" binding:"required,min=1"`
	StudentID   int `json:"student_id" binding:"required,min=1"`
	Level       int `json:"level" binding:"min=0,max=4"`
}
