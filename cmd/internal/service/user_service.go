package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"notekeeper/cmd/internal/auth"
	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/domain/policy"
	"notekeeper/cmd/internal/domain/sqlite/repository"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

// ErrAdminNameTaken means the configured administrator name belongs to a
// regular account whose password differs from the configured one.
var ErrAdminNameTaken = errors.New("administrator name is held by a regular user")

type UserRepository interface {
	FindAll(ctx context.Context) ([]*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByName(ctx context.Context, name string) (*entity.User, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, user *entity.User) error
}

type UserService struct {
	UserRepo   UserRepository
	Hasher     *auth.Hasher
	Validate   *validator.Validate
	UserPolicy *policy.UserPolicy
}

func NewUserService(userRepo UserRepository, hasher *auth.Hasher, validate *validator.Validate, userPolicy *policy.UserPolicy) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		Hasher:     hasher,
		Validate:   validate,
		UserPolicy: userPolicy,
	}
}

// Register creates a user. The password is hashed before it reaches the store.
func (u *UserService) Register(ctx context.Context, req *contract.RegisterRequest) (*contract.UserResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if apierr := checkPasswordLength(req.Password); apierr != nil {
		return nil, apierr
	}

	found, err := u.UserRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return nil, apierror.InternalServerError
	}

	if found {
		return nil, apierror.UserAlreadyExistsError
	}

	hashed, err := u.Hasher.Hash(req.Password)
	if err != nil {
		log.Errorf("failed to hash password: %v", err)
		return nil, apierror.InternalServerError
	}

	now := utils.NowUTC()
	user := &entity.User{
		Name:      req.Name,
		Age:       *req.Age,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if apierr := u.save(ctx, user); apierr != nil {
		return nil, apierr
	}
	return toUserResponse(user), nil
}

func (u *UserService) GetProfile(actor *entity.User) *contract.UserResponse {
	return toUserResponse(actor)
}

func (u *UserService) GetUsers(ctx context.Context) ([]*contract.UserResponse, apierror.ErrorResponse) {
	users, err := u.UserRepo.FindAll(ctx)
	if err != nil {
		log.Errorf("failed to fetch users: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	return resp, nil
}

func (u *UserService) GetUser(ctx context.Context, actor *entity.User, rawId string) (*contract.UserResponse, apierror.ErrorResponse) {
	user, apierr := u.fetchUser(ctx, actor, rawId)
	if apierr != nil {
		return nil, apierr
	}
	return toUserResponse(user), nil
}

// UpdateUser replaces name and age of the target and, only when a new one is
// given, its password. Existence and capability are checked before the body.
func (u *UserService) UpdateUser(ctx context.Context, actor *entity.User, targetId string, req *contract.UpdateUserRequest) (*contract.UserResponse, apierror.ErrorResponse) {
	target, apierr := u.fetchUser(ctx, actor, targetId)
	if apierr != nil {
		return nil, apierr
	}

	if perr := u.UserPolicy.CanUpdateProfile(actor, target); perr != nil {
		return nil, perr
	}

	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if req.Password != nil {
		if apierr := checkPasswordLength(*req.Password); apierr != nil {
			return nil, apierr
		}
	}

	if req.Name != target.Name {
		taken, err := u.UserRepo.ExistsByName(ctx, req.Name)
		if err != nil {
			log.Errorf("failed to check if user name is taken: %v", err)
			return nil, apierror.InternalServerError
		}

		if taken {
			return nil, apierror.UserAlreadyExistsError
		}
	}

	updater := &userUpdater{
		target: target,
		hasher: u.Hasher,
	}

	updater.setString(req.Name, &target.Name)
	updater.setInt(*req.Age, &target.Age)
	updater.setPassword(req.Password)

	if updater.err != nil {
		return nil, updater.err
	}

	if updater.dirty {
		target.UpdatedAt = utils.NowUTC()
		if apierr := u.save(ctx, target); apierr != nil {
			return nil, apierr
		}
	}
	return toUserResponse(target), nil
}

// DeleteUser removes the target together with all of its notes.
func (u *UserService) DeleteUser(ctx context.Context, actor *entity.User, targetRawID string) apierror.ErrorResponse {
	target, apierr := u.fetchUser(ctx, actor, targetRawID)
	if apierr != nil {
		return apierr
	}

	if perr := u.UserPolicy.CanDeleteUser(actor, target); perr != nil {
		return perr
	}

	if err := u.UserRepo.Delete(ctx, target); err != nil {
		log.Errorf("failed to delete user %d: %v", target.ID, err)
		return apierror.InternalServerError
	}

	log.Infof("user %d deleted by user %d", target.ID, actor.ID)
	return nil
}

// EnsureAdmin makes sure a user called name exists and holds the administrator
// permission. An existing non-admin user is only promoted when password
// matches its stored hash, otherwise ErrAdminNameTaken is returned.
func (u *UserService) EnsureAdmin(ctx context.Context, name, password string) error {
	user, err := u.UserRepo.FindByName(ctx, name)
	if err != nil {
		return err
	}

	now := utils.NowUTC()
	if user == nil {
		hashed, err := u.Hasher.Hash(password)
		if err != nil {
			return err
		}

		user = &entity.User{
			Name:      name,
			Password:  hashed,
			CreatedAt: now,
		}
	} else if user.IsAdmin() {
		return nil
	} else if !u.Hasher.Verify(password, user.Password) {
		return fmt.Errorf("%w: %q", ErrAdminNameTaken, name)
	}

	user.Permissions = user.Permissions.Add(entity.PermissionAdministrator)
	user.UpdatedAt = now
	if err := u.UserRepo.Save(ctx, user); err != nil {
		return err
	}

	log.Infof("administrator %q is ready (id %d)", user.Name, user.ID)
	return nil
}

func (u *UserService) save(ctx context.Context, user *entity.User) apierror.ErrorResponse {
	err := u.UserRepo.Save(ctx, user)
	if errors.Is(err, repository.ErrNameTaken) {
		return apierror.UserAlreadyExistsError
	}

	if err != nil {
		log.Errorf("failed to save user: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

// fetchUser tries to resolve the params into a real user.
//
// "@me" always resolves to the requester.
func (u *UserService) fetchUser(ctx context.Context, requester *entity.User, rawId string) (*entity.User, apierror.ErrorResponse) {
	if rawId == "@me" {
		return requester, nil
	}

	userId, err := strconv.ParseInt(rawId, 10, 64)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("id", "int64")
	}

	user, err := u.UserRepo.FindByID(ctx, userId)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", rawId, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.UserNotFoundError
	}
	return user, nil
}

func checkPasswordLength(password string) apierror.ErrorResponse {
	if len(password) <= auth.MaxPasswordBytes {
		return nil
	}

	apierr := apierror.NewStructured(http.StatusBadRequest)
	apierr.Add("password", "Value is too long, max: "+strconv.Itoa(auth.MaxPasswordBytes)+" bytes")
	return apierr
}

func toUserResponse(user *entity.User) *contract.UserResponse {
	return &contract.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Age:       user.Age,
		IsAdmin:   user.IsAdmin(),
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
		UpdatedAt: utils.FormatEpoch(user.UpdatedAt),
	}
}
