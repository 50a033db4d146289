package usecase

import (
	"fmt"
	"strings"
	"time"
)

// TimeContext is the dated context shared by the planner and synthesizer.
type TimeContext struct {
	Now      time.Time
	Location *time.Location
}

// NewTimeContext converts now into loc, falling back to UTC.
func NewTimeContext(now time.Time, loc *time.Location) TimeContext {
	if loc == nil {
		loc = time.UTC
	}
	return TimeContext{Now: now.In(loc), Location: loc}
}

// Dated renders e.g. "Friday, October 16, 2026 07:30 EDT".
func (t TimeContext) Dated() string {
	return t.Now.Format("Monday, January 2, 2006 15:04 MST")
}

// Weekend reports whether US cash markets are closed for the weekend.
func (t TimeContext) Weekend() bool {
	wd := t.Now.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// OpenSessions lists the regional cash sessions trading at t.
func (t TimeContext) OpenSessions() []string {
	if t.Weekend() {
		return nil
	}
	utc := t.Now.UTC()
	minutes := utc.Hour()*60 + utc.Minute()
	var open []string
	// Approximate UTC windows; daylight-saving shifts are ignored.
	if minutes >= 0 && minutes < 6*60 {
		open = append(open, "Tokyo/Hong Kong/Shanghai")
	}
	if minutes >= 7*60 && minutes < 15*60+30 {
		open = append(open, "London/Frankfurt/Paris")
	}
	if minutes >= 13*60+30 && minutes < 20*60 {
		open = append(open, "New York")
	}
	return open
}

// Describe summarizes the temporal context for a reasoning prompt.
func (t TimeContext) Describe() string {
	sessions := "none (between sessions)"
	if t.Weekend() {
		sessions = "none (weekend)"
	} else if open := t.OpenSessions(); len(open) > 0 {
		sessions = strings.Join(open, ", ")
	}
	return fmt.Sprintf("Current time: %s\nDay of week: %s\nHour (local): %02d\nCash sessions open now: %s\n",
		t.Dated(), t.Now.Weekday(), t.Now.Hour(), sessions)
}

