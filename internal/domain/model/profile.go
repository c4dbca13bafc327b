package model

import (
	"net/mail"
	"strings"
	"time"

	"learning-access/internal/domain"

	"github.com/google/uuid"
)

// Profile is the single user record. Role is a scalar that redemption and
// administrators overwrite; no history of prior roles is kept.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	AvatarURL    *string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(e); err != nil {
		return "", domain.ErrInvalidArgument
	}
	return e, nil
}

func NewProfile(id, email, fullName, passwordHash string) (*Profile, error) {
	if id == "" {
		id = uuid.NewString()
	}
	e, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Profile{
		ID:           id,
		Email:        e,
		FullName:     strings.TrimSpace(fullName),
		Role:         RoleUser,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (p *Profile) IsZero() bool { return p == nil || p.ID == "" }
