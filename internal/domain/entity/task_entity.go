package entity

import (
	"time"
)

// Task priority levels.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task workflow states.
const (
	StatusYetToStart = "yet-to-start"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusHold       = "hold"
)

// DeadlineLayout is the wire format for task deadlines.
const DeadlineLayout = "2006-01-02"

// Task belongs to exactly one user. UserID is set from the authenticated
// caller at creation and never changes afterwards.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    string
	Status      string
	Deadline    time.Time
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidPriority reports whether p is one of the enumerated priority values.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the enumerated status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusYetToStart, StatusInProgress, StatusCompleted, StatusHold:
		return true
	}
	return false
}
