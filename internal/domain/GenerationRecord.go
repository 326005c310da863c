package domain

import "time"

// GenerationRecord is one row of report history: one record per
// (report, profile, run). Append-only; failures are recorded with Success
// false and the error detail, never by raising to the scheduler.
type GenerationRecord struct {
	ID           string        `json:"id"`
	ReportID     string        `json:"report_id"`
	UserID       string        `json:"user_id"`
	Profile      RenderProfile `json:"profile"`
	ArtifactPath string        `json:"artifact_path"`
	ArtifactSize int64         `json:"artifact_size"`
	DurationMS   int64         `json:"duration_ms"`
	Success      bool          `json:"success"`
	ErrorDetail  *string       `json:"error_detail,omitempty"`
	GeneratedAt  time.Time     `json:"generated_at"`
}
