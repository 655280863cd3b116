package domain

import (
	"fmt"
	"time"
)

// DateOf returns the calendar date of t as observed in loc, stored as UTC midnight.
// All DATE columns are written and compared in this form.
func DateOf(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses "2006-01-02" into the stored DATE form
func ParseDate(v string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	return d, nil
}

func calendarDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// OverdueDays calendar days from deadline to today, never negative
func OverdueDays(deadline *time.Time, now time.Time, loc *time.Location) int {
	if deadline == nil {
		return 0
	}
	days := int(DateOf(now, loc).Sub(calendarDate(*deadline)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// OverdueHours whole hours elapsed since midnight of the deadline date in loc
func OverdueHours(deadline *time.Time, now time.Time, loc *time.Location) int {
	if deadline == nil {
		return 0
	}
	start := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, loc)
	if !now.After(start) {
		return 0
	}
	return int(now.Sub(start).Hours())
}

// OverdueDurationDisplay renders "N天M小时", "N天", "H小时" or "0小时"
func OverdueDurationDisplay(days, hours int) string {
	if hours > 0 {
		extra := hours % 24
		if days > 0 {
			if extra > 0 {
				return fmt.Sprintf("%d天%d小时", days, extra)
			}
			return fmt.Sprintf("%d天", days)
		}
		return fmt.Sprintf("%d小时", hours)
	}
	if days > 0 {
		return fmt.Sprintf("%d天", days)
	}
	return "0小时"
}

// LagLevel severity tier derived from overdue days
type LagLevel string

const (
	LagNormal   LagLevel = "normal"
	LagMild     LagLevel = "mild"
	LagModerate LagLevel = "moderate"
	LagSevere   LagLevel = "severe"
)

// LagLevelFor maps overdue days to a tier: >3 severe, >1 moderate, >0 mild
func LagLevelFor(days int) LagLevel {
	switch {
	case days > 3:
		return LagSevere
	case days > 1:
		return LagModerate
	case days > 0:
		return LagMild
	default:
		return LagNormal
	}
}

// Label returns the display label
func (l LagLevel) Label() string {
	switch l {
	case LagSevere:
		return "严重滞后"
	case LagModerate:
		return "一般滞后"
	case LagMild:
		return "轻微滞后"
	default:
		return "正常"
	}
}

// Type returns the UI tag type used by the admin front end
func (l LagLevel) Type() string {
	switch l {
	case LagSevere:
		return "danger"
	case LagModerate:
		return "warning"
	case LagMild:
		return "info"
	default:
		return "success"
	}
}

// LagLevelInfo label/type pair as rendered to clients
type LagLevelInfo struct {
	Level LagLevel `json:"level"`
	Label string   `json:"label"`
	Type  string   `json:"type"`
}

// Info returns the client representation
func (l LagLevel) Info() LagLevelInfo {
	return LagLevelInfo{Level: l, Label: l.Label(), Type: l.Type()}
}
