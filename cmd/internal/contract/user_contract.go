package contract

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80,nospaces"`
	Age      *int   `json:"age" validate:"required,gte=0,lte=150"`
	Password string `json:"password" validate:"required,max=72" sanitize:"-"`
}

// LoginRequest follows the OAuth2 password grant form, JSON is accepted too.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required" sanitize:"-"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UpdateUserRequest replaces a user record. The stored password hash is kept
// when Password is omitted.
type UpdateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=80,nospaces"`
	Age      *int    `json:"age" validate:"required,gte=0,lte=150"`
	Password *string `json:"password" validate:"omitempty,min=1,max=72" sanitize:"-"`
}

// UserResponse is the only shape a user leaves the API in. It has no password field.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
