package policy

import (
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils/apierror"
)

// NotePolicy encapsulates all business rules for note manipulation.
// It returns apierror.ErrorResponse directly for seamless integration with handlers.
//
// A missing note is always 404, a note owned by someone else is always 403.
type NotePolicy struct{}

func NewNotePolicy() *NotePolicy {
	return &NotePolicy{}
}

func (p *NotePolicy) CanSee(note *entity.Note, actor *entity.User) apierror.ErrorResponse {
	if note == nil {
		return apierror.NoteNotFoundError
	}

	if !note.OwnedBy(actor) {
		return apierror.NoteNotOwnedError
	}
	return nil
}

func (p *NotePolicy) CanUpdate(note *entity.Note, actor *entity.User) apierror.ErrorResponse {
	return p.CanSee(note, actor)
}

func (p *NotePolicy) CanDelete(note *entity.Note, actor *entity.User) apierror.ErrorResponse {
	return p.CanSee(note, actor)
}

// AssignOwner stamps actor as the owner of note, whatever the client sent.
func (p *NotePolicy) AssignOwner(note *entity.Note, actor *entity.User) {
	note.OwnerID = actor.ID
}
