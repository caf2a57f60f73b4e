package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/readiness"
)

type accessGateway interface {
	Admit(ctx context.Context, params application.AdmitParams) (application.Interview, error)
	RecordPrecheck(ctx context.Context, params application.PrecheckParams) (application.CandidateView, error)
	RecordMonitoringEvent(ctx context.Context, params application.MonitoringParams) (map[string]int, error)
	CandidateView(ctx context.Context, creds application.CandidateCredentials) (application.CandidateView, error)
}

// SessionHandler serves candidate routes authenticated by the access token.
type SessionHandler struct {
	gateway   accessGateway
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(gateway accessGateway, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{gateway: gateway, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

// credentials resolves the interview id and access token, answering 400
// when the token is missing.
func (h *SessionHandler) credentials(w http.ResponseWriter, r *http.Request, operation string) (application.CandidateCredentials, *slog.Logger, bool) {
	if h == nil || h.gateway == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return application.CandidateCredentials{}, nil, false
	}
	creds := application.CandidateCredentials{
		InterviewID: chi.URLParam(r, "id"),
		AccessToken: accessTokenFromRequest(r),
	}
	logger := h.log(r.Context(), operation, "interview_id", creds.InterviewID)
	if creds.AccessToken == "" {
		logger.WarnContext(r.Context(), "missing access token", "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingAccessToken)
		return creds, logger, false
	}
	return creds, logger, true
}

func (h *SessionHandler) View(w http.ResponseWriter, r *http.Request) {
	creds, logger, ok := h.credentials(w, r, "View")
	if !ok {
		return
	}
	view, err := h.gateway.CandidateView(r.Context(), creds)
	if err != nil {
		logger.WarnContext(r.Context(), "candidate view failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCandidateViewResponse(view))
}

func (h *SessionHandler) Precheck(w http.ResponseWriter, r *http.Request) {
	creds, logger, ok := h.credentials(w, r, "Precheck")
	if !ok {
		return
	}
	var report readiness.Report
	if err := decodeJSON(r, &report); err != nil {
		logger.WarnContext(r.Context(), "failed to decode precheck", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	view, err := h.gateway.RecordPrecheck(r.Context(), application.PrecheckParams{
		CandidateCredentials: creds,
		Report:               report,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "precheck rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "precheck recorded", "can_proceed", report.CanProceed())
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCandidateViewResponse(view))
}

// Admit consumes the access token. A submitted precheck report must itself
// pass the gate: the readiness_passed flag alone cannot outvote a failing
// report.
func (h *SessionHandler) Admit(w http.ResponseWriter, r *http.Request) {
	creds, logger, ok := h.credentials(w, r, "Admit")
	if !ok {
		return
	}
	var req admitRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode admission", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	passed := req.ReadinessPassed
	if req.Precheck != nil {
		passed = passed && req.Precheck.CanProceed()
	}

	interview, err := h.gateway.Admit(r.Context(), application.AdmitParams{
		CandidateCredentials: creds,
		ReadinessPassed:      passed,
		Precheck:             req.Precheck,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "admission rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "candidate admitted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCandidateViewResponse(application.CandidateView{
		InterviewID:     interview.ID,
		Status:          interview.Status,
		Mode:            interview.Config.Mode,
		DurationMinutes: interview.Config.DurationMinutes,
		QuestionCount:   interview.Config.QuestionCount,
		ScheduledAt:     interview.Window.ScheduledAt,
		ExpiresAt:       interview.Window.ExpiresAt,
		Timezone:        interview.Window.Timezone,
		Consumed:        interview.Access.Consumed,
		Precheck:        interview.Precheck,
	}))
}

func (h *SessionHandler) Monitoring(w http.ResponseWriter, r *http.Request) {
	creds, logger, ok := h.credentials(w, r, "Monitoring")
	if !ok {
		return
	}
	var req monitoringRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode monitoring event", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	counters, err := h.gateway.RecordMonitoringEvent(r.Context(), application.MonitoringParams{
		CandidateCredentials: creds,
		Kind:                 req.Kind,
		Count:                req.Count,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "monitoring event rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"monitoring": counters})
}
