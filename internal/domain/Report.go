package domain

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

type ReportKind string

const (
	ReportKindLiquidity ReportKind = "liquidity"
	ReportKindRisk      ReportKind = "risk"
	ReportKindCashflow  ReportKind = "cashflow"
)

func ParseReportKind(raw string) (ReportKind, error) {
	switch ReportKind(raw) {
	case ReportKindLiquidity, ReportKindRisk, ReportKindCashflow:
		return ReportKind(raw), nil
	}
	return "", fmt.Errorf("unknown report kind: %q", raw)
}

type SchedulePolicy string

const (
	ScheduleManual  SchedulePolicy = "manual"
	ScheduleDaily   SchedulePolicy = "daily"
	ScheduleWeekly  SchedulePolicy = "weekly"
	ScheduleMonthly SchedulePolicy = "monthly"
)

func ParseSchedulePolicy(raw string) (SchedulePolicy, error) {
	switch SchedulePolicy(raw) {
	case ScheduleManual, ScheduleDaily, ScheduleWeekly, ScheduleMonthly:
		return SchedulePolicy(raw), nil
	}
	return "", fmt.Errorf("unknown schedule policy: %q", raw)
}

type RenderProfile string

const (
	ProfileStandard    RenderProfile = "standard"
	ProfileConstrained RenderProfile = "constrained"
)

func ParseRenderProfile(raw string) (RenderProfile, error) {
	switch RenderProfile(raw) {
	case ProfileStandard, ProfileConstrained:
		return RenderProfile(raw), nil
	}
	return "", fmt.Errorf("unknown render profile: %q", raw)
}

// ReportDefinition configures one recurring (or manual) report. Only the
// lifecycle manager mutates it, and only in the post-run step: LastRunAt,
// NextDueAt and RunCount.
type ReportDefinition struct {
	ID       string         `json:"id"`
	UserID   string         `json:"user_id"`
	Name     string         `json:"name"`
	Kind     ReportKind     `json:"kind"`
	Schedule SchedulePolicy `json:"schedule"`
	// ScheduleHour is the hour of day for the daily policy.
	ScheduleHour int            `json:"schedule_hour"`
	Recipients   pq.StringArray `json:"recipients"`
	Active       bool           `json:"active"`
	// ConstrainedEnabled allows the scheduler to produce a second,
	// constrained-profile artifact for every run.
	ConstrainedEnabled bool       `json:"constrained_enabled"`
	LastRunAt          *time.Time `json:"last_run_at"`
	NextDueAt          *time.Time `json:"next_due_at"`
	RunCount           int        `json:"run_count"`
	CreatedAt          time.Time  `json:"created_at"`
}

// DueAt reports whether a definition should auto-run at the given instant.
func (r *ReportDefinition) DueAt(now time.Time) bool {
	if !r.Active || r.Schedule == ScheduleManual || r.NextDueAt == nil {
		return false
	}
	return !now.Before(*r.NextDueAt)
}
