package service

import "github.com/BigPoppaG/CourseMe/internal/model"

// Authorization policy for the objective catalogue. Pure predicates, no
// side effects.

// CanUpdateObjective reports whether the actor may update an objective.
// Only administrators may edit the catalogue; creation records a creator
// but ownership does not currently grant edit rights.
func CanUpdateObjective(actor *model.User) bool {
	return actor.IsAdmin
}

// CanDeleteObjective reports whether the actor may delete an objective.
// Delete reuses the update rule.
func CanDeleteObjective(actor *model.User) bool {
	return CanUpdateObjective(actor)
}

// AssertSameUser fails with ErrNotAuthorised unless the actor is the user
// identified by expectedID. Used to ensure a tutor can only act as
// themselves when managing adopted objectives.
func AssertSameUser(expectedID int, actor *model.User) error {
	if actor.ID != expectedID {
		return ErrNotAuthorised
	}
	return nil
}
