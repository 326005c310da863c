package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/internal/scheduler"
)

// schedulerStaleAfter is how long the loop may go without completing a scan
// before the healthcheck reports it as stalled.
const schedulerStaleAfter = 5 * time.Minute

type healthcheckResponse struct {
	Status     string    `json:"status"`
	Time       time.Time `json:"time"`
	Scheduler  string    `json:"scheduler"`
	LastScanAt time.Time `json:"last_scan_at,omitempty"`
}

func HealthcheckHandler(schedulerService *scheduler.ReportSchedulerService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := healthcheckResponse{
			Status:    "ok",
			Time:      time.Now().UTC(),
			Scheduler: "ok",
		}

		lastScan := schedulerService.LastScanCompletedAt()
		response.LastScanAt = lastScan

		if lastScan.IsZero() || time.Since(lastScan) > schedulerStaleAfter {
			response.Scheduler = "stale"
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logrus.WithError(err).Warn("error responding to healthcheck")
		}
	})
}
