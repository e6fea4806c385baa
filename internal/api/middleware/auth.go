package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vidstream/account-service/internal/api/metrics"
	"github.com/vidstream/account-service/internal/core/domain"
	"github.com/vidstream/account-service/internal/core/ports"
)

const (
	// AccessTokenCookie is the cookie carrying the access token for browser
	// clients; non-browser clients use the Authorization header instead.
	AccessTokenCookie = "accessToken"

	// accountContextKey matches the key the handlers read the account from.
	accountContextKey = "account"
)

// Session gates protected routes. It extracts the access token from the
// cookie, falling back to a bearer header, verifies it, resolves the subject
// to a public account (cache first, then store) and attaches the account to
// the request context. No request proceeds past this gate without a resolved
// account. Verification failures are normalized to a single message so
// clients cannot distinguish expired from tampered tokens.
func Session(tokens ports.TokenService, repo ports.AccountRepository, cache ports.AccountCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.NewUnauthorizedError("Unauthorized request")
			}

			claims, err := tokens.Verify(token, ports.TokenKindAccess)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return domain.NewUnauthorizedError("Invalid access token")
			}

			account, err := resolveAccount(c, claims.AccountID, repo, cache)
			if err != nil {
				return err
			}
			if account == nil {
				metrics.TokenVerificationsTotal.WithLabelValues("unknown_account").Inc()
				return domain.NewUnauthorizedError("Invalid access token")
			}

			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(accountContextKey, account)
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// resolveAccount looks the subject up in the cache first and falls back to
// the store. Cache failures are advisory: they log nothing here and never
// fail the request.
func resolveAccount(c echo.Context, id string, repo ports.AccountRepository, cache ports.AccountCache) (*domain.PublicAccount, error) {
	ctx := c.Request().Context()

	if cache != nil {
		if cached, err := cache.Get(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	account, err := repo.FindPublicByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account != nil && cache != nil {
		_ = cache.Set(ctx, account)
	}
	return account, nil
}
