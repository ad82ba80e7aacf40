package service

import (
	"notekeeper/cmd/internal/auth"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// userUpdater acts as a "Change Set" context.
// It accumulates errors and tracks if a save is actually needed.
type userUpdater struct {
	target *entity.User
	hasher *auth.Hasher

	// State
	err   apierror.ErrorResponse
	dirty bool
}

// setString handles plain string columns (Name)
func (u *userUpdater) setString(newVal string, targetField *string) {
	if u.err != nil || newVal == *targetField {
		return
	}

	*targetField = newVal
	u.dirty = true
}

func (u *userUpdater) setInt(newVal int, targetField *int) {
	if u.err != nil || newVal == *targetField {
		return
	}

	*targetField = newVal
	u.dirty = true
}

// setPassword re-hashes only when a new password was sent, otherwise the
// stored hash stays as it is.
func (u *userUpdater) setPassword(newVal *string) {
	if u.err != nil || newVal == nil {
		return
	}

	hashed, err := u.hasher.Hash(*newVal)
	if err != nil {
		log.Errorf("failed to hash password of user %d: %v", u.target.ID, err)
		u.err = apierror.InternalServerError
		return
	}

	u.target.Password = hashed
	u.dirty = true
}
