package handler

import (
	"context"
	"net/http"
	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

// NoteService receives the resolved *entity.User so ownership is checked
// without hitting the DB again for the caller.
type NoteService interface {
	ListNotes(ctx context.Context, actor *entity.User, query string) ([]*contract.NoteResponse, apierror.ErrorResponse)
	GetNote(ctx context.Context, actor *entity.User, rawId string) (*contract.NoteResponse, apierror.ErrorResponse)
	CreateNote(ctx context.Context, actor *entity.User, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse)
	UpdateNote(ctx context.Context, actor *entity.User, rawId string, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse)
	DeleteNote(ctx context.Context, actor *entity.User, rawId string) apierror.ErrorResponse
}

type DefaultNoteRoute struct {
	NoteService NoteService
}

func NewNoteDefault(noteService NoteService) *DefaultNoteRoute {
	return &DefaultNoteRoute{NoteService: noteService}
}

func (n *DefaultNoteRoute) GetNotes(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}

	var query contract.NoteQuery
	if err := c.Bind(&query); err != nil {
		return utils.SendError(c, apierror.MalformedBodyError)
	}

	notes, apierr := n.NoteService.ListNotes(c.Request().Context(), user, query.Q)
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, notes)
}

func (n *DefaultNoteRoute) GetNote(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}

	note, apierr := n.NoteService.GetNote(c.Request().Context(), user, c.Param("id"))
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, note)
}

func (n *DefaultNoteRoute) CreateNote(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}

	var req contract.NoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.SendError(c, apierror.MalformedBodyError)
	}

	note, apierr := n.NoteService.CreateNote(c.Request().Context(), user, &req)
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusCreated, note)
}

func (n *DefaultNoteRoute) UpdateNote(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}

	var req contract.NoteRequest
	if err := c.Bind(&req); err != nil {
		return utils.SendError(c, apierror.MalformedBodyError)
	}

	note, apierr := n.NoteService.UpdateNote(c.Request().Context(), user, c.Param("id"), &req)
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, note)
}

func (n *DefaultNoteRoute) DeleteNote(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}

	apierr := n.NoteService.DeleteNote(c.Request().Context(), user, c.Param("id"))
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "Note deleted"})
}
