package account

import (
	"time"

	"github.com/offerhub/offerhub/internal/media"
)

// Profile is the public part of an account, embedded in offer owners.
type Profile struct {
	Username string `json:"username"`
	Phone    string `json:"phone,omitempty"`
}

// Account is a registered marketplace member.
type Account struct {
	ID           string
	Email        string
	Profile      Profile
	Avatar       *media.ImageRef
	PasswordHash string
	PasswordSalt string
	Token        string
	CreatedAt    time.Time
}

// Public is the projection returned by signup and login. It never carries
// the password hash or salt.
type Public struct {
	ID      string  `json:"_id"`
	Token   string  `json:"token"`
	Account Profile `json:"account"`
}

// Public projects the account for API responses.
func (a Account) Public() Public {
	return Public{ID: a.ID, Token: a.Token, Account: a.Profile}
}

// SignupInput is the decoded signup form.
type SignupInput struct {
	Email    string
	Password string
	Username string
	Phone    string
	Avatar   *media.Upload
}
