package model

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment grants a user access to a program. (UserID, ProgramID) is unique.
type Enrollment struct {
	ID             string
	UserID         string
	ProgramID      string
	ProgramTitle   string
	AccessCodeUsed *string
	EnrolledAt     time.Time
	Progress       int
	CompletedAt    *time.Time
}

func NewEnrollment(userID string, program *Program, code string, now time.Time) *Enrollment {
	e := &Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProgramID:  program.ID,
		EnrolledAt: now,
	}
	e.ProgramTitle = program.Title
	if code != "" {
		e.AccessCodeUsed = &code
	}
	return e
}

// LessonProgress tracks one lesson of an enrolled program.
type LessonProgress struct {
	ID          string
	UserID      string
	ProgramID   string
	LessonID    string
	Completed   bool
	CompletedAt *time.Time
	TimeSpent   int // seconds
	CreatedAt   time.Time
}

// ContentType classifies bookmarked content.
type ContentType string

const (
	ContentArticle ContentType = "article"
	ContentEbook   ContentType = "ebook"
	ContentVideo   ContentType = "video"
)

func (t ContentType) Valid() bool {
	return t == ContentArticle || t == ContentEbook || t == ContentVideo
}

// SavedContent is a user bookmark.
type SavedContent struct {
	ID           string
	UserID       string
	ContentType  ContentType
	ContentID    string
	ContentTitle string
	SavedAt      time.Time
}
