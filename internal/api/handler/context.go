package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/vidstream/account-service/internal/core/domain"
)

// accountContextKey is where the session middleware stores the resolved
// account. Shared as a plain string so the middleware package does not need
// to import this one.
const accountContextKey = "account"

// currentAccount extracts the account injected by the session middleware and
// fast-fails before any service call when the gate did not run.
func currentAccount(c echo.Context) (*domain.PublicAccount, error) {
	account, _ := c.Get(accountContextKey).(*domain.PublicAccount)
	if account == nil {
		return nil, domain.NewUnauthorizedError("Unauthorized request")
	}
	return account, nil
}
