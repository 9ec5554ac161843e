package task

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Group is a fixed category tag. The set is static and loaded once; groups
// are never created or destroyed at runtime.
type Group struct {
	ID    string
	Name  string
	Color lipgloss.Color
}

const DefaultGroupID = "personal"

var Groups = []Group{
	{ID: "personal", Name: "Personal", Color: lipgloss.Color("211")},
	{ID: "work", Name: "Work", Color: lipgloss.Color("75")},
	{ID: "learning", Name: "Learning", Color: lipgloss.Color("214")},
	{ID: "health", Name: "Health", Color: lipgloss.Color("42")},
}

// GroupByID returns the group for id, or the default group when id does not
// name a known group. Records never carry an unknown group id past this point.
func GroupByID(id string) Group {
	for _, g := range Groups {
		if g.ID == id {
			return g
		}
	}
	return GroupByID(DefaultGroupID)
}

// NormalizeGroupID maps an unknown group id to the default group id.
func NormalizeGroupID(id string) string {
	return GroupByID(id).ID
}

type SubTask struct {
	ID        string
	Title     string
	Completed bool
}

type Task struct {
	ID          string
	Title       string
	Description string
	Date        string // YYYY-MM-DD, opaque local calendar date
	Time        string // HH:MM 24-hour, "" means unscheduled
	GroupID     string
	Completed   bool
	Subtasks    []SubTask
}

// ValidTitle reports whether title is non-empty after trimming.
func ValidTitle(title string) bool {
	return strings.TrimSpace(title) != ""
}

// ValidDate checks the YYYY-MM-DD shape without reinterpreting the value in
// any timezone.
func ValidDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ValidTime checks the HH:MM 24-hour shape. The empty string is valid and
// means "any time".
func ValidTime(s string) bool {
	if s == "" {
		return true
	}
	_, ok := timeToMinutes(s)
	return ok
}

// timeToMinutes parses HH:MM into minutes since midnight. Hours 00-23,
// minutes 00-59; anything else is rejected.
func timeToMinutes(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	h1, h2 := s[0], s[1]
	m1, m2 := s[3], s[4]
	for _, c := range []byte{h1, h2, m1, m2} {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	hour := int(h1-'0')*10 + int(h2-'0')
	minute := int(m1-'0')*10 + int(m2-'0')
	if hour > 23 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// PlaceholderID is the id of the month-summary placeholder for a date. It is
// derived from the date and never targeted by CRUD operations.
func PlaceholderID(date string) string {
	return date + "-placeholder"
}

// Placeholder builds a degenerate task marking calendar activity on a date.
// Its completed flag reports whether finished work outweighs pending work.
func Placeholder(date string, pending, completed int) Task {
	return Task{
		ID:        PlaceholderID(date),
		Date:      date,
		GroupID:   DefaultGroupID,
		Completed: completed > pending,
	}
}
