package service

import (
	"context"
	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/domain/policy"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type NoteRepository interface {
	FindByOwner(ctx context.Context, ownerID int64, query string) ([]*entity.Note, error)
	FindByID(ctx context.Context, id int64) (*entity.Note, error)
	Save(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, note *entity.Note) error
}

type DefaultNoteService struct {
	NoteRepo   NoteRepository
	Validate   *validator.Validate
	NotePolicy *policy.NotePolicy
}

func NewNoteService(noteRepo NoteRepository, validate *validator.Validate, notePolicy *policy.NotePolicy) *DefaultNoteService {
	return &DefaultNoteService{
		NoteRepo:   noteRepo,
		Validate:   validate,
		NotePolicy: notePolicy,
	}
}

// ListNotes returns the notes of the actor. A non-empty query keeps only the
// notes whose title or content contains it.
func (n *DefaultNoteService) ListNotes(ctx context.Context, actor *entity.User, query string) ([]*contract.NoteResponse, apierror.ErrorResponse) {
	notes, err := n.NoteRepo.FindByOwner(ctx, actor.ID, query)
	if err != nil {
		log.Errorf("failed to fetch notes of user %d: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.NoteResponse, len(notes))
	for i, note := range notes {
		resp[i] = toNoteResponse(note)
	}
	return resp, nil
}

func (n *DefaultNoteService) GetNote(ctx context.Context, actor *entity.User, rawId string) (*contract.NoteResponse, apierror.ErrorResponse) {
	note, apierr := n.fetchNote(ctx, rawId)
	if apierr != nil {
		return nil, apierr
	}

	if perr := n.NotePolicy.CanSee(note, actor); perr != nil {
		return nil, perr
	}
	return toNoteResponse(note), nil
}

func (n *DefaultNoteService) CreateNote(ctx context.Context, actor *entity.User, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := n.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	now := utils.NowUTC()
	note := &entity.Note{
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	n.NotePolicy.AssignOwner(note, actor)

	if err := n.NoteRepo.Save(ctx, note); err != nil {
		log.Errorf("failed to save note: %v", err)
		return nil, apierror.InternalServerError
	}
	return toNoteResponse(note), nil
}

// UpdateNote replaces title and content of a note owned by the actor. The
// owner never changes.
func (n *DefaultNoteService) UpdateNote(ctx context.Context, actor *entity.User, rawId string, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse) {
	note, apierr := n.fetchNote(ctx, rawId)
	if apierr != nil {
		return nil, apierr
	}

	if perr := n.NotePolicy.CanUpdate(note, actor); perr != nil {
		return nil, perr
	}

	utils.Sanitize(req)
	if valerr := n.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	note.Title = req.Title
	note.Content = req.Content
	note.UpdatedAt = utils.NowUTC()

	if err := n.NoteRepo.Save(ctx, note); err != nil {
		log.Errorf("failed to update note %d: %v", note.ID, err)
		return nil, apierror.InternalServerError
	}
	return toNoteResponse(note), nil
}

func (n *DefaultNoteService) DeleteNote(ctx context.Context, actor *entity.User, rawId string) apierror.ErrorResponse {
	note, apierr := n.fetchNote(ctx, rawId)
	if apierr != nil {
		return apierr
	}

	if perr := n.NotePolicy.CanDelete(note, actor); perr != nil {
		return perr
	}

	if err := n.NoteRepo.Delete(ctx, note); err != nil {
		log.Errorf("failed to delete note %d: %v", note.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// fetchNote parses the id and loads the note. A missing note is returned as
// nil so the policy decides the status.
func (n *DefaultNoteService) fetchNote(ctx context.Context, rawId string) (*entity.Note, apierror.ErrorResponse) {
	noteId, err := strconv.ParseInt(rawId, 10, 64)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("id", "int64")
	}

	note, err := n.NoteRepo.FindByID(ctx, noteId)
	if err != nil {
		log.Errorf("failed to fetch note %d: %v", noteId, err)
		return nil, apierror.InternalServerError
	}
	return note, nil
}

func toNoteResponse(note *entity.Note) *contract.NoteResponse {
	return &contract.NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		OwnerID:   note.OwnerID,
		CreatedAt: utils.FormatEpoch(note.CreatedAt),
		UpdatedAt: utils.FormatEpoch(note.UpdatedAt),
	}
}
