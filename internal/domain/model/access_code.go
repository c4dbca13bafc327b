package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"learning-access/internal/domain"
)

// MaxCodeLength is the longest code a user can type into the redemption form.
const MaxCodeLength = 20

// EffectKind says what a redeemed code grants.
type EffectKind string

const (
	EffectRole    EffectKind = "role"
	EffectProgram EffectKind = "program"
)

func (k EffectKind) Valid() bool { return k == EffectRole || k == EffectProgram }

// CodeState is the derived lifecycle state of an access code.
type CodeState string

const (
	CodeStateActive    CodeState = "active"
	CodeStateDisabled  CodeState = "disabled"
	CodeStateExpired   CodeState = "expired"
	CodeStateExhausted CodeState = "exhausted"
)

// AccessCode is a redeemable token that grants a role or a program enrollment
// a bounded number of times.
type AccessCode struct {
	ID           string
	Code         string
	EffectKind   EffectKind
	EffectTarget string
	IsActive     bool
	MaxUses      int
	CurrentUses  int
	ExpiresAt    *time.Time // Pointer to allow for NULL
	CreatedBy    *string    // Pointer to allow for NULL
	CreatedAt    time.Time
}

// NormalizeCode trims and uppercases raw user input.
func NormalizeCode(raw string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" || utf8.RuneCountInString(c) > MaxCodeLength {
		return "", domain.ErrInvalidCode
	}
	return c, nil
}

func (c *AccessCode) RemainingUses() int {
	if c == nil || c.CurrentUses >= c.MaxUses {
		return 0
	}
	return c.MaxUses - c.CurrentUses
}

// IsExpired reports whether expiresAt has passed at now.
func (c *AccessCode) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// State derives the lifecycle state. Expiry is irreversible so it wins over
// the administrator toggle.
func (c *AccessCode) State(now time.Time) CodeState {
	switch {
	case c.IsExpired(now):
		return CodeStateExpired
	case !c.IsActive:
		return CodeStateDisabled
	case c.CurrentUses >= c.MaxUses:
		return CodeStateExhausted
	default:
		return CodeStateActive
	}
}
