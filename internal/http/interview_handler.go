package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/lifecycle"
)

type interviewService interface {
	CreateInterview(ctx context.Context, params application.CreateInterviewParams) (application.Interview, error)
	UpdateConfig(ctx context.Context, params application.UpdateConfigParams) (application.Interview, error)
	GenerateQuestions(ctx context.Context, params application.GenerateQuestionsParams) (application.Interview, error)
	MarkReady(ctx context.Context, principal application.Principal, interviewID string) (application.AccessGrant, error)
	ScheduleInterview(ctx context.Context, params application.ScheduleParams) (application.Interview, error)
	RescheduleInterview(ctx context.Context, params application.ScheduleParams) (application.Interview, error)
	SendInvite(ctx context.Context, principal application.Principal, interviewID string) (application.AccessGrant, error)
	CancelInterview(ctx context.Context, params application.CancelParams) (application.Interview, error)
	CompleteInterview(ctx context.Context, params application.CompleteParams) (application.Interview, error)
	SetDecision(ctx context.Context, params application.DecisionParams) (application.Interview, error)
	GetInterview(ctx context.Context, principal application.Principal, interviewID string) (application.Interview, error)
	ListInterviews(ctx context.Context, principal application.Principal, filter application.InterviewFilter) ([]application.Interview, error)
	History(ctx context.Context, principal application.Principal, interviewID string) ([]application.TransitionRecord, error)
}

// InterviewHandler serves the recruiter routes.
type InterviewHandler struct {
	service   interviewService
	responder responder
	logger    *slog.Logger
}

func NewInterviewHandler(service interviewService, logger *slog.Logger) *InterviewHandler {
	base := defaultLogger(logger)
	return &InterviewHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *InterviewHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "InterviewHandler", operation, attrs...)
}

func (h *InterviewHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *InterviewHandler) fail(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	logger.WarnContext(ctx, msg, "error", err, "error_kind", application.ErrorKind(err))
	h.responder.handleServiceError(ctx, w, err)
}

// decode reads the body into dst and answers 400 on failure.
func (h *InterviewHandler) decode(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		logger.WarnContext(r.Context(), "failed to decode request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return false
	}
	return true
}

func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	var req createInterviewRequest
	if !h.decode(w, r, logger, &req) {
		return
	}

	params := application.CreateInterviewParams{
		Principal:   principal,
		JobID:       req.JobID,
		CandidateID: req.CandidateID,
		Config:      req.Config.toModel(),
	}
	if req.Window != nil {
		window := req.Window.toModel()
		params.Window = &window
	}

	interview, err := h.service.CreateInterview(r.Context(), params)
	if err != nil {
		h.fail(r.Context(), w, logger, "interview creation failed", err)
		return
	}

	logger.With("interview_id", interview.ID).InfoContext(r.Context(), "interview created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toInterviewResponse(interview))
}

func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	filter := application.InterviewFilter{CandidateID: strings.TrimSpace(r.URL.Query().Get("candidate_id"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			status, err := lifecycle.ParseStatus(strings.TrimSpace(value))
			if err != nil {
				logger.WarnContext(r.Context(), "invalid status filter", "error", err, "error_kind", "bad_request")
				h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	interviews, err := h.service.ListInterviews(r.Context(), principal, filter)
	if err != nil {
		h.fail(r.Context(), w, logger, "interview listing failed", err)
		return
	}

	resp := make([]interviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		resp = append(resp, toInterviewResponse(interview))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"interviews": resp})
}

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "interview_id", id)

	interview, err := h.service.GetInterview(r.Context(), principal, id)
	if err != nil {
		h.fail(r.Context(), w, logger, "interview lookup failed", err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInterviewResponse(interview))
}

func (h *InterviewHandler) History(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "History", "principal_id", principal.UserID, "interview_id", id)

	records, err := h.service.History(r.Context(), principal, id)
	if err != nil {
		h.fail(r.Context(), w, logger, "history lookup failed", err)
		return
	}

	resp := make([]transitionResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, transitionResponse{
			ID:         rec.ID,
			Transition: rec.Transition,
			From:       rec.From,
			To:         rec.To,
			Actor:      rec.Actor,
			Reason:     rec.Reason,
			OccurredAt: rec.OccurredAt,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{"transitions": resp})
}

func (h *InterviewHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "UpdateConfig", "principal_id", principal.UserID, "interview_id", id)

	var req configPayload
	if !h.decode(w, r, logger, &req) {
		return
	}

	interview, err := h.service.UpdateConfig(r.Context(), application.UpdateConfigParams{
		Principal:   principal,
		InterviewID: id,
		Config:      req.toModel(),
	})
	if err != nil {
		h.fail(r.Context(), w, logger, "config update failed", err)
		return
	}
	logger.InfoContext(r.Context(), "config updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInterviewResponse(interview))
}

func (h *InterviewHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "GenerateQuestions", "principal_id", principal.UserID, "interview_id", id)

	var req questionsRequest
	if !h.decode(w, r, logger, &req) {
		return
	}

	interview, err := h.service.GenerateQuestions(r.Context(), application.GenerateQuestionsParams{
		Principal:   principal,
		InterviewID: id,
		Questions:   req.Questions,
	})
	if err != nil {
		h.fail(r.Context(), w, logger, "question generation failed", err)
		return
	}
	logger.InfoContext(r.Context(), "questions stored", "count", len(interview.Questions))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInterviewResponse(interview))
}

func (h *InterviewHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "MarkReady", "principal_id", principal.UserID, "interview_id", id)

	grant, err := h.service.MarkReady(r.Context(), principal, id)
	if err != nil {
		h.fail(r.Context(), w, logger, "mark ready failed", err)
		return
	}
	logger.InfoContext(r.Context(), "interview marked ready")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toGrantResponse(grant))
}

func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	h.schedule(w, r, "Schedule", false)
}

func (h *InterviewHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	h.schedule(w, r, "Reschedule", true)
}

// schedule accepts an empty body on POST so a window stored at creation
// time can be applied.
func (h *InterviewHandler) schedule(w http.ResponseWriter, r *http.Request, operation string, reschedule bool) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "interview_id", id)

	var req windowPayload
	if r.ContentLength != 0 {
		if !h.decode(w, r, logger, &req) {
			return
		}
	}

	params := application.ScheduleParams{
		Principal:   principal,
		InterviewID: id,
		Window:      req.toModel(),
	}
	var (
		interview application.Interview
		err       error
	)
	if reschedule {
		interview, err = h.service.RescheduleInterview(r.Context(), params)
	} else {
		interview, err = h.service.ScheduleInterview(r.Context(), params)
	}
	if err != nil {
		h.fail(r.Context(), w, logger, "scheduling failed", err)
		return
	}
	logger.InfoContext(r.Context(), "interview scheduled", "scheduled_at", interview.Window.ScheduledAt)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInterviewResponse(interview))
}

func (h *InterviewHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "SendInvite", "principal_id", principal.UserID, "interview_id", id)

	grant, err := h.service.SendInvite(r.Context(), principal, id)
	if err != nil {
		h.fail(r.Context(), w, logger, "invite failed", err)
		return
	}
	logger.InfoContext(r.Context(), "invite issued")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toGrantResponse(grant))
}

func (h *InterviewHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "Cancel", "principal_id", principal.UserID, "interview_id", id)

	var req cancelRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, logger, &req) {
			return
		}
	}

	interview, err := h.service.CancelInterview(r.Context(), application.CancelParams{
		Principal:   principal,
		InterviewID: id,
		Reason:      req.Reason,
	})
	if err != nil {
		h.fail(r.Context(), w, logger, "cancellation failed", err)
		return
	}
	logger.InfoContext(r.Context(), "interview cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInterviewResponse(interview))
}

func (h *InterviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "Complete", "principal_id", principal.UserID, "interview_id", id)

	interview, err := h.service.CompleteInterview(r.Context(), application.CompleteParams{
		Principal:   principal,
		InterviewID: id,
	})
	if err != nil {
		h.fail(r.Context(), w, logger, "completion failed", err)
		return
	}
	logger.InfoContext(r.Context(), "interview completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInterviewResponse(interview))
}

func (h *InterviewHandler) SetDecision(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	logger := h.log(r.Context(), "SetDecision", "principal_id", principal.UserID, "interview_id", id)

	var req decisionRequest
	if !h.decode(w, r, logger, &req) {
		return
	}

	interview, err := h.service.SetDecision(r.Context(), application.DecisionParams{
		Principal:   principal,
		InterviewID: id,
		Status:      application.DecisionStatus(req.Status),
		Note:        req.Note,
	})
	if err != nil {
		h.fail(r.Context(), w, logger, "decision failed", err)
		return
	}
	logger.InfoContext(r.Context(), "decision recorded", "decision", req.Status)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInterviewResponse(interview))
}
