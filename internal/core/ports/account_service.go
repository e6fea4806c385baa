package ports

import (
	"context"

	"github.com/vidstream/account-service/internal/core/domain"
)

// RegisterInput carries the registration form fields plus the local temp
// paths of the uploaded images. Path lifecycle belongs to the caller.
type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// LoginInput identifies an account by username or email.
type LoginInput struct {
	Identifier string
	Password   string
}

// Session is the result of a successful login or token refresh.
type Session struct {
	Account      *domain.PublicAccount
	AccessToken  string
	RefreshToken string
}

type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.PublicAccount, error)
	Login(ctx context.Context, in LoginInput) (*Session, error)
	Logout(ctx context.Context, accountID string) error
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}
