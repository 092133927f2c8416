package models

import "fmt"

type TimerStatus string

const (
	TimerRunning TimerStatus = "running"
	TimerPaused  TimerStatus = "paused"
	TimerExpired TimerStatus = "expired"
	// TimerStopped is terminal: the attempt ended elsewhere and is not auto-submitted.
	TimerStopped TimerStatus = "stopped"
)

// Thresholds in seconds.
const (
	FirstWarningAt = 900
	FinalWarningAt = 300
)

// Timer display colours.
const (
	ColorDefault = ""
	ColorWarning = "#fd7e14"
	ColorDanger  = "#dc3545"
)

// TimerSnapshot is a point-in-time view of the countdown.
type TimerSnapshot struct {
	Status            TimerStatus `json:"status"`
	Remaining         int         `json:"remaining"`
	Display           string      `json:"display"`
	Color             string      `json:"color"`
	FirstWarningShown bool        `json:"first_warning_shown"`
	FinalWarningShown bool        `json:"final_warning_shown"`
}

// FormatClock renders seconds as HH:MM:SS. Negative input renders as zero.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ClockColor returns the display colour for the remaining time.
func ClockColor(seconds int) string {
	switch {
	case seconds <= FinalWarningAt:
		return ColorDanger
	case seconds <= FirstWarningAt:
		return ColorWarning
	default:
		return ColorDefault
	}
}

// FormatTrackTime renders seconds as M:SS, used for audio positions.
func FormatTrackTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
