package policy

import (
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils/apierror"
)

const admin = entity.PermissionAdministrator

// UserPolicy encapsulates all business rules for user manipulation.
// It returns apierror.ErrorResponse directly for seamless integration with handlers.
//
// Every authenticated user may read the user list; only the user itself or an
// administrator may change or delete a record.
type UserPolicy struct{}

func NewUserPolicy() *UserPolicy {
	return &UserPolicy{}
}

// CanUpdateProfile checks if 'actor' can replace the record of 'target'
func (p *UserPolicy) CanUpdateProfile(actor, target *entity.User) apierror.ErrorResponse {
	return p.canManage(actor, target)
}

// CanDeleteUser checks if 'actor' can delete 'target'
func (p *UserPolicy) CanDeleteUser(actor, target *entity.User) apierror.ErrorResponse {
	return p.canManage(actor, target)
}

func (p *UserPolicy) canManage(actor, target *entity.User) apierror.ErrorResponse {
	if target == nil {
		return apierror.UserNotFoundError
	}

	if actor.ID == target.ID {
		return nil
	}

	// Admin Immunity
	if target.Permissions.Has(admin) {
		return apierror.AdminImmunityError
	}

	if !actor.Permissions.Has(admin) {
		return apierror.UserNotManageableError
	}
	return nil
}
