package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vidstream/account-service/internal/api/metrics"
	"github.com/vidstream/account-service/internal/core/domain"
	"github.com/vidstream/account-service/internal/core/ports"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type AccountHandler struct {
	service ports.AccountService
	tempDir string
}

// NewAccountHandler creates the handler. tempDir is where multipart uploads
// land before they are pushed to media hosting; every temp file is removed
// before the request completes, on success and failure alike.
func NewAccountHandler(service ports.AccountService, tempDir string) *AccountHandler {
	return &AccountHandler{service: service, tempDir: tempDir}
}

// Register creates a new account from a multipart form.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        username   formData  string  true   "Username"
// @Param        email      formData  string  true   "Email"
// @Param        fullName   formData  string  true   "Full name"
// @Param        password   formData  string  true   "Password"
// @Param        avatar     formData  file    true   "Avatar image"
// @Param        coverImage formData  file    true   "Cover image"
// @Success      201  {object}  apiResponse
// @Failure      400  {object}  apiResponse
// @Failure      409  {object}  apiResponse
// @Failure      500  {object}  apiResponse
// @Router       /api/v1/users/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	start := time.Now()

	in := ports.RegisterInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		FullName: c.FormValue("fullName"),
		Password: c.FormValue("password"),
	}

	if file, err := c.FormFile("avatar"); err == nil {
		path, err := h.saveTemp(file)
		if err != nil {
			return err
		}
		defer os.Remove(path)
		in.AvatarPath = path
	}
	if file, err := c.FormFile("coverImage"); err == nil {
		path, err := h.saveTemp(file)
		if err != nil {
			return err
		}
		defer os.Remove(path)
		in.CoverImagePath = path
	}

	account, err := h.service.Register(c.Request().Context(), in)
	metrics.RegistrationsTotal.WithLabelValues(registerOutcome(err)).Inc()
	metrics.RegistrationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, account, "User registered successfully")
}

// Login authenticates by email or username and returns a token pair, both in
// the body and as httpOnly+secure cookies.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      404   {object}  apiResponse
// @Router       /api/v1/users/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return domain.NewValidationError("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}

	session, err := h.service.Login(c.Request().Context(), ports.LoginInput{
		Identifier: identifier,
		Password:   req.Password,
	})
	metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
	if err != nil {
		return err
	}

	setTokenCookie(c, accessTokenCookie, session.AccessToken)
	setTokenCookie(c, refreshTokenCookie, session.RefreshToken)

	return respond(c, http.StatusOK, sessionResponse{
		User:         session.Account,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, "User logged in successfully")
}

// Logout revokes the stored refresh token and clears both token cookies.
// Safe to call twice: the second clear is a no-op write.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /api/v1/users/logout [post]
func (h *AccountHandler) Logout(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}

	if err := h.service.Logout(c.Request().Context(), account.ID); err != nil {
		return err
	}
	metrics.LogoutsTotal.Inc()

	clearTokenCookie(c, accessTokenCookie)
	clearTokenCookie(c, refreshTokenCookie)

	return respond(c, http.StatusOK, struct{}{}, "User logged out successfully")
}

// Refresh rotates the token pair using the refresh token from the cookie or
// the request body.
//
// @Summary      Refresh the access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token for non-browser clients"
// @Success      200   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Router       /api/v1/users/refresh-token [post]
func (h *AccountHandler) Refresh(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}

	session, err := h.service.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}

	setTokenCookie(c, accessTokenCookie, session.AccessToken)
	setTokenCookie(c, refreshTokenCookie, session.RefreshToken)

	return respond(c, http.StatusOK, sessionResponse{
		User:         session.Account,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, "Access token refreshed")
}

// Me returns the authenticated account's public projection.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /api/v1/users/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, account, "Current user fetched successfully")
}

// saveTemp writes a multipart upload to the temp dir under a fresh name.
// The returned path is removed by the caller via defer.
func (h *AccountHandler) saveTemp(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.tempDir, 0o755); err != nil {
		return "", domain.NewInternalError("Failed to store uploaded file")
	}

	src, err := file.Open()
	if err != nil {
		return "", domain.NewInternalError("Failed to store uploaded file")
	}
	defer src.Close()

	path := filepath.Join(h.tempDir, uuid.New().String()+filepath.Ext(file.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", domain.NewInternalError("Failed to store uploaded file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", domain.NewInternalError("Failed to store uploaded file")
	}
	return path, nil
}

func setTokenCookie(c echo.Context, name, value string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
}

func clearTokenCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}

func registerOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Status {
		case http.StatusBadRequest:
			return "invalid"
		case http.StatusConflict:
			return "conflict"
		}
	}
	return "error"
}

func loginOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Status {
		case http.StatusBadRequest:
			return "invalid"
		case http.StatusNotFound:
			return "not_found"
		case http.StatusUnauthorized:
			return "rejected"
		}
	}
	return "error"
}
