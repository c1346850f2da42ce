package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Username and password constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
)

// Common validation errors
var (
	ErrEmptyUserID         = validationError("user ID cannot be empty")
	ErrEmptyUsername       = validationError("username cannot be empty")
	ErrUsernameLength      = validationError("username must be between 3 and 30 characters long")
	ErrUsernameCharacters  = validationError("username may only contain letters, numbers and underscores")
	ErrEmptyPassword       = validationError("password cannot be empty")
	ErrPasswordTooShort    = validationError("password must be at least 6 characters long")
	ErrPasswordTooLong     = validationError("password must be at most 72 characters long")
	ErrEmptyHashedPassword = validationError("hashed password cannot be empty")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// User represents a registered TaskMaster account.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext, only held until hashed
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NormalizeUsername trims surrounding whitespace from a submitted username.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NewUser creates a new User with the given username and plaintext password.
// The caller is responsible for hashing the password before storing the user.
func NewUser(username, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  NormalizeUsername(username),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if err := ValidateUsername(u.Username); err != nil {
		return err
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ValidateUsername checks length and character set of a normalized username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return ErrUsernameLength
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameCharacters
	}
	return nil
}

// ValidatePassword checks a plaintext password against the length limits.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}
