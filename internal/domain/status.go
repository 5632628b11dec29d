package domain

import "strings"

// Status is the lifecycle state shared by plans and tasks. Transitions are
// unrestricted: any state is reachable from any other.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCancelled  Status = "cancelled"
	StatusCompleted  Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) IsCompleted() bool {
	return s == StatusCompleted
}

// ParseStatus maps an arbitrary string to a Status. Unknown values fall back
// to StatusNotStarted.
func ParseStatus(v string) Status {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if s.Valid() {
		return s
	}
	return StatusNotStarted
}
