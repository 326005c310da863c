package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/infrastructure/repository"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
	"github.com/temirlan/finance-dashboard-api/internal/usecases/reporting"
	"github.com/temirlan/finance-dashboard-api/pkg/apiErrors"
	"github.com/temirlan/finance-dashboard-api/pkg/middleware"
	"github.com/temirlan/finance-dashboard-api/pkg/utils"
)

const defaultHistoryLimit = 20

type CreateReportRequest struct {
	Name               string   `json:"name"`
	Kind               string   `json:"kind"`
	Schedule           string   `json:"schedule"`
	ScheduleHour       int      `json:"schedule_hour"`
	Recipients         []string `json:"recipients"`
	ConstrainedEnabled bool     `json:"constrained_enabled"`
}

// CreateReport registers a new report definition for the logged-in user.
func CreateReport(reportRepo repository.ReportRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		var req CreateReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request body", nil)
			return
		}

		if req.Name == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "name is required", nil)
			return
		}

		kind, err := domain.ParseReportKind(req.Kind)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrUnknownReportKind, err.Error(), nil)
			return
		}

		schedule, err := domain.ParseSchedulePolicy(req.Schedule)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		if req.ScheduleHour < 0 || req.ScheduleHour > 23 {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "schedule_hour must be between 0 and 23", nil)
			return
		}

		id, err := utils.GenerateID()
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "generating id", nil)
			return
		}

		report := &domain.ReportDefinition{
			ID:                 id,
			UserID:             claims.UserID,
			Name:               req.Name,
			Kind:               kind,
			Schedule:           schedule,
			ScheduleHour:       req.ScheduleHour,
			Recipients:         pq.StringArray(req.Recipients),
			Active:             true,
			ConstrainedEnabled: req.ConstrainedEnabled,
		}

		if schedule != domain.ScheduleManual {
			nextDue := reporting.NextDueAfter(report, time.Now())
			report.NextDueAt = &nextDue
		}

		if err := reportRepo.Create(report); err != nil {
			logrus.WithError(err).Error("creating report definition")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "error creating report", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(report)
	}
}

// ListReports returns the definitions owned by the logged-in user.
func ListReports(reportRepo repository.ReportRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		reports, err := reportRepo.ListByUser(claims.UserID)
		if err != nil {
			logrus.WithError(err).Error("listing reports")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "error listing reports", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reports)
	}
}

// RunReport triggers a single generation run outside the schedule.
func RunReport(reportRepo repository.ReportRepository, runner reporting.ReportRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		reportID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		report, err := loadOwnedReport(w, reportRepo, reportID, claims)
		if report == nil || err != nil {
			return
		}

		profile := domain.ProfileStandard
		if raw := r.URL.Query().Get("profile"); raw != "" {
			profile, err = domain.ParseRenderProfile(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrUnknownProfile, err.Error(), nil)
				return
			}
		}

		record, err := runner.RunReport(r.Context(), reportID, profile)
		if err != nil {
			switch {
			case errors.Is(err, reporting.ErrReportNotFound):
				apiErrors.WriteError(w, apiErrors.ErrReportNotFound, "report not found", nil)
			case errors.Is(err, reporting.ErrReportNotActive):
				apiErrors.WriteError(w, apiErrors.ErrReportNotActive, "report is not active", nil)
			default:
				logrus.WithError(err).Error("manual report run")
				apiErrors.WriteError(w, apiErrors.ErrReportGeneration, "error running report", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(record)
	}
}

// ReportHistory lists the generation records of one report, newest first.
func ReportHistory(reportRepo repository.ReportRepository, recordRepo repository.GenerationRecordRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		reportID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		report, err := loadOwnedReport(w, reportRepo, reportID, claims)
		if report == nil || err != nil {
			return
		}

		limit := uint64(defaultHistoryLimit)
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 16)
			if err != nil || parsed == 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit must be a positive integer", nil)
				return
			}
			limit = parsed
		}

		records, err := recordRepo.ListByReport(reportID, limit)
		if err != nil {
			logrus.WithError(err).Error("listing report history")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "error listing history", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}

// loadOwnedReport fetches a definition and enforces ownership: clients only
// reach their own reports, admins reach everything. On failure the error
// response is already written and nil is returned.
func loadOwnedReport(w http.ResponseWriter, reportRepo repository.ReportRepository, reportID string, claims *domain.Claims) (*domain.ReportDefinition, error) {
	if reportID == "" {
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "report id is required", nil)
		return nil, nil
	}

	report, err := reportRepo.GetByID(reportID)
	if err != nil {
		logrus.WithError(err).Error("loading report definition")
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "error loading report", nil)
		return nil, err
	}

	if report == nil {
		apiErrors.WriteError(w, apiErrors.ErrReportNotFound, "report not found", nil)
		return nil, nil
	}

	if claims.UserRoleID != domain.RoleAdmin && report.UserID != claims.UserID {
		apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "you do not have access to this report", nil)
		return nil, nil
	}

	return report, nil
}
