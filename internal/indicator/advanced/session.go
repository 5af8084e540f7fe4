package advanced

import "time"

// Session names the active trading session in UTC.
type Session string

const (
	SessionAsian    Session = "asian"
	SessionLondon   Session = "london"
	SessionNewYork  Session = "newyork"
	SessionOverlap  Session = "overlap"
	SessionOffHours Session = "off_hours"
)

// SessionFilter gates signals by the trading session clock.
type SessionFilter struct {
	CurrentSession          Session `json:"current_session"`
	IsHighVolatilitySession bool    `json:"is_high_volatility_session"`
	ShouldTrade             bool    `json:"should_trade"`
	MinutesSinceOpen        int     `json:"minutes_since_open"`
	IsFirstHour             bool    `json:"is_first_hour"`
	IsLastHour              bool    `json:"is_last_hour"`
	Reason                  string  `json:"reason"`
}

// CalculateSessionFilter classifies the UTC session for the given instant.
// Weekends and off-hours veto trading; the first hour after the New York
// open (14:00 UTC) and the last hour of the New York session are flagged but
// not vetoed.
func CalculateSessionFilter(now time.Time) SessionFilter {
	utc := now.UTC()
	hour := utc.Hour()
	minutes := utc.Minute()
	weekday := utc.Weekday()

	isWeekend := weekday == time.Sunday || weekday == time.Saturday

	var session Session
	highVolatility := false
	switch {
	case hour < 8:
		session = SessionAsian
		highVolatility = hour >= 1 && hour <= 6
	case hour < 12:
		session = SessionLondon
		highVolatility = true
	case hour < 17:
		session = SessionOverlap
		highVolatility = true
	case hour < 21:
		session = SessionNewYork
		highVolatility = hour < 20
	default:
		session = SessionOffHours
	}

	const nyOpenHour = 14
	minutesSinceOpen := 0
	if hour >= nyOpenHour {
		minutesSinceOpen = (hour-nyOpenHour)*60 + minutes
	}

	isFirstHour := minutesSinceOpen > 0 && minutesSinceOpen <= 60
	isLastHour := hour == 20

	shouldTrade := true
	reason := "Trading session active"
	switch {
	case isWeekend:
		shouldTrade = false
		reason = "Weekend - markets closed"
	case session == SessionOffHours:
		shouldTrade = false
		reason = "Off-hours - low liquidity"
	case isFirstHour:
		reason = "First hour of NY session - increased volatility"
	case isLastHour:
		reason = "Last hour - reduced position sizing recommended"
	}

	return SessionFilter{
		CurrentSession:          session,
		IsHighVolatilitySession: highVolatility,
		ShouldTrade:             shouldTrade,
		MinutesSinceOpen:        minutesSinceOpen,
		IsFirstHour:             isFirstHour,
		IsLastHour:              isLastHour,
		Reason:                  reason,
	}
}
