package model

import (
	"strings"
	"time"

	"learning-access/internal/domain"
)

// Program is a course a user can be enrolled in. PurchaseURL is an opaque
// outbound checkout link.
type Program struct {
	ID          string
	Title       string
	Description string
	LessonCount int
	PurchaseURL string
	CreatedAt   time.Time
}

func NewProgram(id, title, description string, lessonCount int, purchaseURL string) (*Program, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" || strings.TrimSpace(title) == "" || lessonCount < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Program{
		ID:          id,
		Title:       strings.TrimSpace(title),
		Description: description,
		LessonCount: lessonCount,
		PurchaseURL: purchaseURL,
		CreatedAt:   time.Now(),
	}, nil
}
