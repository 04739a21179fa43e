package tasks

import "strings"

// Status is the three-state completion status read off a card's marker icon.
type Status string

const (
	StatusTodo    Status = "TODO"
	StatusDone    Status = "DONE"
	StatusInvalid Status = "INVALID"
)

// Marker icon classes the dashboard uses on activity cards. When the site
// changes these, classification degrades to INVALID rather than guessing.
const (
	markerTodoAdd       = "mee-icon-AddMedium"
	markerTodoHourglass = "mee-icon-HourGlass"
	markerDoneCheck     = "mee-icon-SkypeCircleCheck"
)

// ClassifyStatus maps a status-marker class attribute to a Status. Two known
// markers mean to-do, one means done, anything else is INVALID.
func ClassifyStatus(markerClass string) Status {
	switch {
	case strings.Contains(markerClass, markerTodoAdd),
		strings.Contains(markerClass, markerTodoHourglass):
		return StatusTodo
	case strings.Contains(markerClass, markerDoneCheck):
		return StatusDone
	default:
		return StatusInvalid
	}
}
