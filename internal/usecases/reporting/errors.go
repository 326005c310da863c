package reporting

import "github.com/pkg/errors"

var (
	// ErrReportNotFound means the definition does not exist. No history is
	// written.
	ErrReportNotFound = errors.New("report not found")
	// ErrReportNotActive means the definition exists but is switched off.
	// The run is skipped silently: no history, no error record.
	ErrReportNotActive = errors.New("report not active")
)
