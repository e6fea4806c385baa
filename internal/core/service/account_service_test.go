package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/vidstream/account-service/internal/core/domain"
	"github.com/vidstream/account-service/internal/core/ports"
)

type stubAccountRepo struct {
	accounts   map[string]*domain.Account // by id
	seq        int
	losePublic bool // simulate the post-create fetch failing
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	for _, existing := range r.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return nil, domain.NewConflictError("User with email or username already exists")
		}
	}
	r.seq++
	stored := cloneAccount(account)
	stored.ID = fmt.Sprintf("id-%d", r.seq)
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.accounts[stored.ID] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	return cloneAccount(r.accounts[id]), nil
}

func (r *stubAccountRepo) FindPublicByID(_ context.Context, id string) (*domain.PublicAccount, error) {
	if r.losePublic {
		return nil, nil
	}
	a := r.accounts[id]
	if a == nil {
		return nil, nil
	}
	return a.Public(), nil
}

func (r *stubAccountRepo) FindByUsernameOrEmail(_ context.Context, identifier string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Username == identifier || a.Email == identifier {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *stubAccountRepo) UpdateRefreshToken(_ context.Context, id, token string) error {
	if a := r.accounts[id]; a != nil {
		a.RefreshToken = token
	}
	return nil
}

func (r *stubAccountRepo) ClearRefreshToken(_ context.Context, id string) error {
	if a := r.accounts[id]; a != nil {
		a.RefreshToken = ""
	}
	return nil
}

type stubStorage struct {
	fail    bool
	uploads []string
}

func (s *stubStorage) Upload(_ context.Context, localPath string) (string, error) {
	if s.fail {
		return "", errors.New("host unreachable")
	}
	s.uploads = append(s.uploads, localPath)
	return "https://cdn.example.com/" + localPath, nil
}

func newTestService(repo *stubAccountRepo, storage *stubStorage) *AccountService {
	tokens := NewTokenService("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
	return NewAccountService(repo, tokens, storage)
}

func validInput() ports.RegisterInput {
	return ports.RegisterInput{
		Username:       "Alice",
		Email:          "Alice@X.com",
		FullName:       "Alice A.",
		Password:       "Secr3t!",
		AvatarPath:     "avatar.png",
		CoverImagePath: "cover.png",
	}
}

func domainStatus(t *testing.T, err error) int {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected domain error, got %v", err)
	}
	return de.Status
}

func TestAccountService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	storage := &stubStorage{}
	svc := newTestService(repo, storage)

	public, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if public.Username != "alice" || public.Email != "alice@x.com" {
		t.Fatalf("identity not normalized: %+v", public)
	}
	if public.AvatarURL == "" || public.CoverImageURL == "" {
		t.Fatalf("expected hosted media URLs: %+v", public)
	}
	if len(storage.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(storage.uploads))
	}

	stored := repo.accounts[public.ID]
	if stored == nil {
		t.Fatalf("account not persisted")
	}
	if stored.PasswordHash == "Secr3t!" || stored.PasswordHash == "" {
		t.Fatalf("password not hashed: %q", stored.PasswordHash)
	}
	if !stored.VerifyPassword("Secr3t!") {
		t.Fatalf("stored hash does not verify the password")
	}
}

func TestAccountService_Register_MissingFields(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*ports.RegisterInput)
	}{
		{"username", func(in *ports.RegisterInput) { in.Username = "  " }},
		{"email", func(in *ports.RegisterInput) { in.Email = "" }},
		{"fullName", func(in *ports.RegisterInput) { in.FullName = "" }},
		{"password", func(in *ports.RegisterInput) { in.Password = "" }},
	} {
		repo := newStubAccountRepo()
		svc := newTestService(repo, &stubStorage{})

		in := validInput()
		tc.mutate(&in)

		_, err := svc.Register(context.Background(), in)
		if status := domainStatus(t, err); status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, status)
		}
		if len(repo.accounts) != 0 {
			t.Fatalf("%s: account persisted despite validation failure", tc.name)
		}
	}
}

func TestAccountService_Register_MissingImages(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), &stubStorage{})

	in := validInput()
	in.AvatarPath = ""
	_, err := svc.Register(context.Background(), in)
	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing avatar, got %d", status)
	}

	in = validInput()
	in.CoverImagePath = ""
	_, err = svc.Register(context.Background(), in)
	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing cover image, got %d", status)
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, &stubStorage{})

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	// Same email, different username.
	in := validInput()
	in.Username = "bob"
	_, err := svc.Register(context.Background(), in)
	if status := domainStatus(t, err); status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", status)
	}

	// Same username, different email.
	in = validInput()
	in.Email = "bob@x.com"
	_, err = svc.Register(context.Background(), in)
	if status := domainStatus(t, err); status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", status)
	}

	if len(repo.accounts) != 1 {
		t.Fatalf("expected exactly one account, got %d", len(repo.accounts))
	}
}

func TestAccountService_Register_DuplicateReportedBeforeMissingImages(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, &stubStorage{})

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	// Duplicate email and no cover image: the conflict wins.
	in := validInput()
	in.Username = "bob"
	in.CoverImagePath = ""
	_, err := svc.Register(context.Background(), in)
	if status := domainStatus(t, err); status != http.StatusConflict {
		t.Fatalf("expected 409 for the duplicate, got %d", status)
	}
}

func TestAccountService_Register_UploadFailure(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, &stubStorage{fail: true})

	_, err := svc.Register(context.Background(), validInput())
	if status := domainStatus(t, err); status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for upload failure, got %d", status)
	}
	if len(repo.accounts) != 0 {
		t.Fatalf("account persisted despite upload failure")
	}
}

func TestAccountService_Register_LostPublicFetch(t *testing.T) {
	repo := newStubAccountRepo()
	repo.losePublic = true
	svc := newTestService(repo, &stubStorage{})

	_, err := svc.Register(context.Background(), validInput())
	if status := domainStatus(t, err); status != http.StatusInternalServerError {
		t.Fatalf("expected 500 when post-create fetch fails, got %d", status)
	}
}

func TestAccountService_Login_Success_OverwritesRefreshToken(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, &stubStorage{})

	public, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	first, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice@x.com", Password: "Secr3t!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if first.AccessToken == "" || first.RefreshToken == "" {
		t.Fatalf("expected a token pair")
	}
	if repo.accounts[public.ID].RefreshToken != first.RefreshToken {
		t.Fatalf("refresh token not persisted")
	}

	// A second login replaces the stored refresh token; only the latest
	// session's token is honored.
	second, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice", Password: "Secr3t!"})
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if repo.accounts[public.ID].RefreshToken != second.RefreshToken {
		t.Fatalf("stored refresh token not replaced")
	}

	if _, err := svc.Refresh(context.Background(), first.RefreshToken); err == nil {
		t.Fatalf("stale refresh token still accepted")
	}
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), &stubStorage{})
	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice@x.com", Password: "wrong"})
	if status := domainStatus(t, err); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	// The message must not reveal which credential was wrong.
	var de *domain.Error
	errors.As(err, &de)
	if de.Message != "Invalid user credentials" {
		t.Fatalf("unexpected message: %q", de.Message)
	}
}

func TestAccountService_Login_UnknownUser(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), &stubStorage{})

	_, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "ghost@x.com", Password: "pass"})
	if status := domainStatus(t, err); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestAccountService_Login_MissingFields(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), &stubStorage{})

	_, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "", Password: "x"})
	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	_, err = svc.Login(context.Background(), ports.LoginInput{Identifier: "alice", Password: ""})
	if status := domainStatus(t, err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestAccountService_Logout_Idempotent(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, &stubStorage{})

	public, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice", Password: "Secr3t!"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), public.ID); err != nil {
		t.Fatalf("first logout failed: %v", err)
	}
	if repo.accounts[public.ID].RefreshToken != "" {
		t.Fatalf("refresh token not cleared")
	}
	if err := svc.Logout(context.Background(), public.ID); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
}

func TestAccountService_Refresh_RotatesPair(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, &stubStorage{})

	public, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	session, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice", Password: "Secr3t!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	rotated, err := svc.Refresh(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatalf("expected a rotated token pair")
	}
	if repo.accounts[public.ID].RefreshToken != rotated.RefreshToken {
		t.Fatalf("rotated refresh token not persisted")
	}
}

func TestAccountService_Refresh_DetachedTokenIsInert(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestService(repo, &stubStorage{})

	public, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	session, err := svc.Login(context.Background(), ports.LoginInput{Identifier: "alice", Password: "Secr3t!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Logout detaches the token from the stored value; the unexpired JWT
	// must no longer mint anything.
	if err := svc.Logout(context.Background(), public.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	_, err = svc.Refresh(context.Background(), session.RefreshToken)
	if status := domainStatus(t, err); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for detached refresh token, got %d", status)
	}
}

func TestAccountService_Refresh_InvalidToken(t *testing.T) {
	svc := newTestService(newStubAccountRepo(), &stubStorage{})

	for _, bad := range []string{"", "garbage"} {
		_, err := svc.Refresh(context.Background(), bad)
		if status := domainStatus(t, err); status != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", bad, status)
		}
	}
}
