package calendar

import "time"

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

const (
	highWindow   = 24 * time.Hour
	mediumWindow = 72 * time.Hour
)

// Classify grades how close a deadline is. Overdue counts as High.
func Classify(due, now time.Time) Urgency {
	left := due.Sub(now)
	switch {
	case left <= highWindow:
		return UrgencyHigh
	case left <= mediumWindow:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ColorToken is a theme-independent color name for an urgency.
type ColorToken string

const (
	ColorRed    ColorToken = "red"
	ColorOrange ColorToken = "orange"
	ColorBlue   ColorToken = "blue"
)

func (u Urgency) Color() ColorToken {
	switch u {
	case UrgencyHigh:
		return ColorRed
	case UrgencyMedium:
		return ColorOrange
	default:
		return ColorBlue
	}
}
