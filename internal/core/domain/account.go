package domain

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the minimum work factor applied to every password hash.
var bcryptCost = bcrypt.DefaultCost

// Account models a registered user. There is exactly one role in this
// system, so the entity carries no role field.
type Account struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	PasswordHash  string    `json:"-"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	RefreshToken  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicAccount is the only account shape that crosses the API boundary.
// It never carries the password hash or the refresh token.
type PublicAccount struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Public strips the credential fields.
func (a *Account) Public() *PublicAccount {
	return &PublicAccount{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// Normalize trims all identity fields and lowercases username and email so
// uniqueness is case-insensitive at the store.
func (a *Account) Normalize() {
	a.Username = strings.ToLower(strings.TrimSpace(a.Username))
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.FullName = strings.TrimSpace(a.FullName)
}

// SetPassword hashes plain with bcrypt and stores the result. Hashing happens
// exactly once per plaintext: passing a value that is already a bcrypt hash is
// a no-op, so a re-save can never double-hash a credential.
func (a *Account) SetPassword(plain string) error {
	if plain == "" {
		return NewValidationError("Password is required")
	}
	if isBcryptHash(plain) {
		a.PasswordHash = plain
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return NewInternalError("failed to hash password")
	}
	a.PasswordHash = string(hash)
	return nil
}

// VerifyPassword reports whether plain matches the stored hash. bcrypt
// performs the comparison in constant time; the hash is never reversed.
func (a *Account) VerifyPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plain)) == nil
}

// isBcryptHash recognises the standard bcrypt prefixes ($2a$, $2b$, $2y$).
func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}
