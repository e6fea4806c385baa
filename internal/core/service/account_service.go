package service

import (
	"context"
	"strings"

	"github.com/vidstream/account-service/internal/core/domain"
	"github.com/vidstream/account-service/internal/core/ports"
)

// AccountService implements registration, login, logout and token refresh.
type AccountService struct {
	repo    ports.AccountRepository
	tokens  ports.TokenService
	storage ports.MediaStorage
}

func NewAccountService(repo ports.AccountRepository, tokens ports.TokenService, storage ports.MediaStorage) *AccountService {
	return &AccountService{repo: repo, tokens: tokens, storage: storage}
}

// Register validates the form, hosts both images and creates the account.
// Registration is all-or-nothing from the caller's perspective: any failure
// after validation surfaces as a single domain error and no partial account
// is returned.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.PublicAccount, error) {
	var missing []string
	if strings.TrimSpace(in.Username) == "" {
		missing = append(missing, "username is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email is required")
	}
	if strings.TrimSpace(in.FullName) == "" {
		missing = append(missing, "fullName is required")
	}
	if strings.TrimSpace(in.Password) == "" {
		missing = append(missing, "password is required")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("All fields are required", missing...)
	}

	account := &domain.Account{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
	}
	account.Normalize()

	if existing, err := s.repo.FindByUsernameOrEmail(ctx, account.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.NewConflictError("User with email or username already exists")
	}
	if existing, err := s.repo.FindByUsernameOrEmail(ctx, account.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.NewConflictError("User with email or username already exists")
	}

	// Image presence is checked after uniqueness so a duplicate identity
	// reports the conflict, not the missing file.
	if in.AvatarPath == "" {
		return nil, domain.NewValidationError("Avatar file is required")
	}
	if in.CoverImagePath == "" {
		return nil, domain.NewValidationError("Cover image file is required")
	}

	avatarURL, err := s.uploadMedia(ctx, "avatar", in.AvatarPath)
	if err != nil {
		return nil, err
	}
	coverURL, err := s.uploadMedia(ctx, "cover", in.CoverImagePath)
	if err != nil {
		return nil, err
	}
	account.AvatarURL = avatarURL
	account.CoverImageURL = coverURL

	if err := account.SetPassword(in.Password); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	public, err := s.repo.FindPublicByID(ctx, created.ID)
	if err != nil || public == nil {
		return nil, domain.NewInternalError("Something went wrong while registering the user")
	}
	return public, nil
}

// Login authenticates by username or email and issues a fresh token pair.
// Persisting the new refresh token implicitly invalidates any prior session;
// concurrent logins race to last write wins.
func (s *AccountService) Login(ctx context.Context, in ports.LoginInput) (*ports.Session, error) {
	if strings.TrimSpace(in.Identifier) == "" || in.Password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	identifier := strings.ToLower(strings.TrimSpace(in.Identifier))
	account, err := s.repo.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.NewNotFoundError("User does not exist")
	}

	if !account.VerifyPassword(in.Password) {
		return nil, domain.NewAuthenticationError("Invalid user credentials")
	}

	return s.startSession(ctx, account)
}

// Logout clears the stored refresh token. Clearing an already-empty value is
// a no-op write, so calling logout twice is safe.
func (s *AccountService) Logout(ctx context.Context, accountID string) error {
	return s.repo.ClearRefreshToken(ctx, accountID)
}

// Refresh rotates the token pair. The presented refresh token must both
// verify and match the value currently stored on the account; a token
// detached from the stored value (after logout or a newer login) is inert
// even before its natural expiry.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*ports.Session, error) {
	if refreshToken == "" {
		return nil, domain.NewUnauthorizedError("Unauthorized request")
	}

	claims, err := s.tokens.Verify(refreshToken, ports.TokenKindRefresh)
	if err != nil {
		return nil, domain.NewUnauthorizedError("Invalid refresh token")
	}

	account, err := s.repo.FindByID(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil || account.RefreshToken == "" || account.RefreshToken != refreshToken {
		return nil, domain.NewUnauthorizedError("Refresh token is expired or used")
	}

	return s.startSession(ctx, account)
}

func (s *AccountService) startSession(ctx context.Context, account *domain.Account) (*ports.Session, error) {
	accessToken, err := s.tokens.IssueAccessToken(account)
	if err != nil {
		return nil, domain.NewInternalError("failed to issue access token")
	}
	refreshToken, err := s.tokens.IssueRefreshToken(account)
	if err != nil {
		return nil, domain.NewInternalError("failed to issue refresh token")
	}

	if err := s.repo.UpdateRefreshToken(ctx, account.ID, refreshToken); err != nil {
		return nil, err
	}

	return &ports.Session{
		Account:      account.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AccountService) uploadMedia(ctx context.Context, kind, localPath string) (string, error) {
	url, err := s.storage.Upload(ctx, localPath)
	if err != nil {
		return "", domain.NewUploadError("Failed to upload " + kind + " image")
	}
	return url, nil
}
