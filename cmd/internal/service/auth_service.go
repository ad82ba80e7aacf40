package service

import (
	"context"
	"notekeeper/cmd/internal/auth"
	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

// AuthService turns credentials into bearer tokens and bearer tokens back into users.
type AuthService struct {
	UserRepo UserRepository
	Tokens   *auth.TokenService
	Hasher   *auth.Hasher
	Validate *validator.Validate

	// dummyHash is compared against when the user does not exist, so a login
	// for an unknown name costs as much as a wrong password.
	dummyHash string
}

func NewAuthService(userRepo UserRepository, tokens *auth.TokenService, hasher *auth.Hasher, validate *validator.Validate) (*AuthService, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}

	return &AuthService{
		UserRepo:  userRepo,
		Tokens:    tokens,
		Hasher:    hasher,
		Validate:  validate,
		dummyHash: dummy,
	}, nil
}

// Login checks the credentials and issues an access token for the user.
func (a *AuthService) Login(ctx context.Context, req *contract.LoginRequest) (*contract.LoginResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := a.UserRepo.FindByName(ctx, req.Username)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		a.Hasher.Verify(req.Password, a.dummyHash)
		return nil, apierror.CredentialsMismatchError
	}

	if !a.Hasher.Verify(req.Password, user.Password) {
		return nil, apierror.CredentialsMismatchError
	}

	token, err := a.Tokens.Issue(user.Name, user.ID)
	if err != nil {
		log.Errorf("failed to issue token for user %d: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return &contract.LoginResponse{AccessToken: token, TokenType: auth.TokenType}, nil
}

// Resolve validates the raw bearer token and loads the user it names.
//
// A bad token and a token whose user no longer exists both yield
// apierror.UnauthorizedError, so callers cannot tell which one happened.
func (a *AuthService) Resolve(ctx context.Context, rawToken string) (*entity.User, apierror.ErrorResponse) {
	if rawToken == "" {
		return nil, apierror.UnauthorizedError
	}

	claims, err := a.Tokens.Claims(rawToken)
	if err != nil {
		log.Debugf("rejected bearer token: %v", err)
		return nil, apierror.UnauthorizedError
	}

	user, err := a.UserRepo.FindByName(ctx, claims.Subject)
	if err != nil {
		log.Errorf("failed to resolve token subject: %v", err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		// User deleted in DB but still has a valid token
		return nil, apierror.UnauthorizedError
	}

	// The name now belongs to a different account than the one the token was issued to.
	if claims.UserID != user.ID {
		return nil, apierror.UnauthorizedError
	}

	// A token older than the account was issued to an earlier owner of the name.
	if claims.IssuedAt == nil || claims.IssuedAt.Unix() < user.CreatedAt/1000 {
		return nil, apierror.UnauthorizedError
	}
	return user, nil
}
