package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Redemption is one ledger entry per successful code use. The number of
// entries for a code always equals its CurrentUses.
type Redemption struct {
	ID           string
	CodeID       string
	Code         string
	UserID       string
	EffectKind   EffectKind
	EffectTarget string
	RedeemedAt   time.Time
}

func NewRedemption(code *AccessCode, userID string, now time.Time) *Redemption {
	return &Redemption{
		ID:           ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		CodeID:       code.ID,
		Code:         code.Code,
		UserID:       userID,
		EffectKind:   code.EffectKind,
		EffectTarget: code.EffectTarget,
		RedeemedAt:   now,
	}
}

// UsageDrift reports a code whose counter disagrees with its ledger.
type UsageDrift struct {
	CodeID      string
	Code        string
	CurrentUses int
	LedgerCount int
}
