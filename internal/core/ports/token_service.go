package ports

import "github.com/vidstream/account-service/internal/core/domain"

// TokenKind distinguishes the two token families. Each kind is signed with
// its own secret, so one kind can never be replayed as the other.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the verified payload of a token. Refresh tokens carry only
// the account id and username; access tokens carry the full identity set.
type TokenClaims struct {
	AccountID string
	Username  string
	Email     string
	FullName  string
	Kind      TokenKind
}

// TokenService issues and verifies signed bearer tokens. Verification is
// stateless; revocation happens via the refresh token stored on the account.
type TokenService interface {
	IssueAccessToken(account *domain.Account) (string, error)
	IssueRefreshToken(account *domain.Account) (string, error)
	Verify(token string, kind TokenKind) (*TokenClaims, error)
}
