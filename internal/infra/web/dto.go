package web

import (
	"time"

	"learning-access/internal/domain/model"
)

type profileView struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	FullName     string             `json:"full_name"`
	AvatarURL    *string            `json:"avatar_url,omitempty"`
	Role         model.Role         `json:"role"`
	Capabilities []model.Capability `json:"capabilities,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func toProfileView(p *model.Profile, withCaps bool) profileView {
	v := profileView{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
	if withCaps {
		for _, c := range allCapabilities {
			if model.Can(p.Role, c) {
				v.Capabilities = append(v.Capabilities, c)
			}
		}
	}
	return v
}

var allCapabilities = []model.Capability{
	model.CapViewDashboard,
	model.CapRedeemCode,
	model.CapViewAdmin,
	model.CapManageCodes,
	model.CapManageUsers,
	model.CapManagePrograms,
	model.CapManageContent,
	model.CapGrantAdmin,
}

type codeView struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	EffectKind    model.EffectKind `json:"effect_kind"`
	EffectTarget  string           `json:"effect_target"`
	IsActive      bool             `json:"is_active"`
	State         model.CodeState  `json:"state"`
	MaxUses       int              `json:"max_uses"`
	CurrentUses   int              `json:"current_uses"`
	RemainingUses int              `json:"remaining_uses"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	CreatedBy     *string          `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func toCodeView(c *model.AccessCode, now time.Time) codeView {
	return codeView{
		ID:            c.ID,
		Code:          c.Code,
		EffectKind:    c.EffectKind,
		EffectTarget:  c.EffectTarget,
		IsActive:      c.IsActive,
		State:         c.State(now),
		MaxUses:       c.MaxUses,
		CurrentUses:   c.CurrentUses,
		RemainingUses: c.RemainingUses(),
		ExpiresAt:     c.ExpiresAt,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
	}
}

func toCodeViews(list []*model.AccessCode) []codeView {
	now := time.Now()
	out := make([]codeView, 0, len(list))
	for _, c := range list {
		out = append(out, toCodeView(c, now))
	}
	return out
}

type redemptionView struct {
	ID           string           `json:"id"`
	CodeID       string           `json:"code_id"`
	Code         string           `json:"code"`
	UserID       string           `json:"user_id"`
	EffectKind   model.EffectKind `json:"effect_kind"`
	EffectTarget string           `json:"effect_target"`
	RedeemedAt   time.Time        `json:"redeemed_at"`
}

func toRedemptionViews(list []*model.Redemption) []redemptionView {
	out := make([]redemptionView, 0, len(list))
	for _, r := range list {
		out = append(out, redemptionView{
			ID:           r.ID,
			CodeID:       r.CodeID,
			Code:         r.Code,
			UserID:       r.UserID,
			EffectKind:   r.EffectKind,
			EffectTarget: r.EffectTarget,
			RedeemedAt:   r.RedeemedAt,
		})
	}
	return out
}

type programView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	LessonCount int    `json:"lesson_count"`
	PurchaseURL string `json:"purchase_url,omitempty"`
}

func toProgramViews(list []*model.Program) []programView {
	out := make([]programView, 0, len(list))
	for _, p := range list {
		out = append(out, programView{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			LessonCount: p.LessonCount,
			PurchaseURL: p.PurchaseURL,
		})
	}
	return out
}

type enrollmentView struct {
	ProgramID      string     `json:"program_id"`
	ProgramTitle   string     `json:"program_title"`
	AccessCodeUsed *string    `json:"access_code_used,omitempty"`
	EnrolledAt     time.Time  `json:"enrolled_at"`
	Progress       int        `json:"progress"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

func toEnrollmentView(e *model.Enrollment) enrollmentView {
	return enrollmentView{
		ProgramID:      e.ProgramID,
		ProgramTitle:   e.ProgramTitle,
		AccessCodeUsed: e.AccessCodeUsed,
		EnrolledAt:     e.EnrolledAt,
		Progress:       e.Progress,
		CompletedAt:    e.CompletedAt,
	}
}

type savedView struct {
	ID           string            `json:"id"`
	ContentType  model.ContentType `json:"content_type"`
	ContentID    string            `json:"content_id"`
	ContentTitle string            `json:"content_title"`
	SavedAt      time.Time         `json:"saved_at"`
}

func toSavedView(s *model.SavedContent) savedView {
	return savedView{
		ID:           s.ID,
		ContentType:  s.ContentType,
		ContentID:    s.ContentID,
		ContentTitle: s.ContentTitle,
		SavedAt:      s.SavedAt,
	}
}
