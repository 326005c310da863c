package handler

import (
	"net/http"

	"github.com/temirlan/finance-dashboard-api/internal/scheduler"
)

// SchedulerStatus exposes the scheduler state for operators.
func SchedulerStatus(service *scheduler.ReportSchedulerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.GetStatus())
	}
}

// TriggerScan starts a due-report scan outside the schedule.
func TriggerScan(service *scheduler.ReportSchedulerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service.TriggerManualScan()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "scan scheduled",
		})
	}
}
