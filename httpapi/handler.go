// Package httpapi is the thin HTTP layer over the lifecycle engine. Handlers
// decode, authorize, delegate, and encode; every business rule lives in the
// domain services.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onboardflow/auth"
	"onboardflow/dispute"
	"onboardflow/employee"
	"onboardflow/identity"
	"onboardflow/metrics"
	"onboardflow/offer"
	"onboardflow/onboarding"
	"onboardflow/ratelimit"
	"onboardflow/resolution"
	"onboardflow/signing"
)

// LifecycleService is the orchestrator surface the handlers need.
type LifecycleService interface {
	VerifyCandidate(ctx context.Context, claim identity.Claim) (identity.Outcome, error)
	LoadReview(ctx context.Context, employeeID string) ([]offer.ReviewCategory, error)
	Accept(ctx context.Context, employeeID string, actorID *string) (onboarding.AcceptanceResult, error)
	Dispute(ctx context.Context, params onboarding.DisputeParams) (onboarding.DisputeOpened, error)
	ReopenOffer(ctx context.Context, employeeID string, categories []offer.ReviewCategory, actorID *string) (offer.Record, error)
	SignDocument(ctx context.Context, packageID, documentID string, actorID *string) (signing.SignResult, error)
	CorrectDocument(ctx context.Context, packageID, documentID, reason string, actorID *string) (signing.DocumentItem, error)
	CurrentDocument(ctx context.Context, packageID string) (*signing.DocumentItem, error)
	SigningProgress(ctx context.Context, packageID string) (signing.Progress, error)
	Employee(ctx context.Context, employeeID string) (employee.Record, error)
	PackageOwner(ctx context.Context, packageID string) (string, error)
	DisputeOwner(ctx context.Context, disputeID string) (string, error)
}

// ConversationService is the dispute-resolution surface the handlers need.
type ConversationService interface {
	AppendCandidateMessage(ctx context.Context, disputeID, text string) (resolution.TurnResult, error)
	Transcript(ctx context.Context, disputeID string) ([]resolution.Message, error)
}

// AuthService is the account and token surface the handlers need.
type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	MintCandidateToken(employeeID string) (string, error)
}

// Handler wires the engine's services to routes.
type Handler struct {
	lifecycle    LifecycleService
	conversation ConversationService
	auth         AuthService
	limiter      ratelimit.Limiter
	logger       *log.Logger
}

func NewHandler(lifecycle LifecycleService, conversation ConversationService, authSvc AuthService, limiter ratelimit.Limiter, logger *log.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		lifecycle:    lifecycle,
		conversation: conversation,
		auth:         authSvc,
		limiter:      limiter,
		logger:       logger,
	}
}

// Router builds the chi mux.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)
		r.Post("/session/verify", h.handleVerify)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(h.auth))

			r.Get("/employees/{employeeID}", h.handleEmployee)
			r.Get("/offers/{employeeID}/review", h.handleReview)
			r.Post("/offers/{employeeID}/decision", h.handleDecision)
			r.Post("/offers/{employeeID}/reopen", requireStaff(h.handleReopen))

			r.Post("/intake/start", requireStaff(h.handleIntakeStart))
			r.Post("/intake/answer", requireStaff(h.handleIntakeAnswer))

			r.Post("/disputes/{disputeID}/messages", h.handleDisputeMessage)
			r.Get("/disputes/{disputeID}/messages", h.handleTranscript)

			r.Get("/packages/{packageID}/current", h.handleCurrentDocument)
			r.Get("/packages/{packageID}/progress", h.handleProgress)
			r.Post("/packages/{packageID}/documents/{documentID}/sign", h.handleSign)
			r.Post("/packages/{packageID}/documents/{documentID}/correct", h.handleCorrect)
		})
	})

	return r
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid request body"})
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: err.Error()})
		case errors.Is(err, auth.ErrDuplicateEmail):
			writeJSON(w, http.StatusConflict, errorBody{Error: string(onboarding.KindConflict), Message: "email already registered"})
		default:
			writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid registration"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"user_id": user.ID,
		"role":    string(user.Role),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid request body"})
		return
	}

	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "invalid credentials"})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":   res.Token,
		"user_id": res.User.ID,
		"role":    string(res.User.Role),
	})
}

type verifyRequest struct {
	IdentifierType  string `json:"identifier_type"`
	IdentifierValue string `json:"identifier_value"`
	Jurisdiction    string `json:"jurisdiction"`
}

// handleVerify is the public entry point of the candidate journey. Attempts
// are throttled per client address; a found candidate gets a session token
// bound to their employee record.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	allowed, err := h.limiter.Allow(r.Context(), r.RemoteAddr)
	if err != nil {
		h.logger.Printf("rate limiter unavailable, failing open: %v", err)
	}
	if !allowed {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Message: "too many verification attempts, try again later"})
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid request body"})
		return
	}

	outcome, err := h.lifecycle.VerifyCandidate(r.Context(), identity.Claim{
		IdentifierType:  identity.IdentifierType(req.IdentifierType),
		IdentifierValue: req.IdentifierValue,
		Jurisdiction:    req.Jurisdiction,
	})
	if err != nil {
		metrics.Verifications.WithLabelValues("error").Inc()
		writeError(w, err)
		return
	}
	metrics.Verifications.WithLabelValues(string(outcome.Kind)).Inc()

	body := map[string]string{"outcome": string(outcome.Kind)}
	if outcome.Kind == identity.OutcomeFound {
		token, err := h.auth.MintCandidateToken(outcome.Record.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		body["employee_id"] = outcome.Record.ID
		body["token"] = token
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) handleEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !authorizeEmployee(w, r, employeeID) {
		return
	}

	rec, err := h.lifecycle.Employee(r.Context(), employeeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"employee_id": rec.ID,
		"status":      string(rec.Status),
	})
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !authorizeEmployee(w, r, employeeID) {
		return
	}

	categories, err := h.lifecycle.LoadReview(r.Context(), employeeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

type decisionRequest struct {
	Decision   string `json:"decision"`
	ReasonCode string `json:"reason_code,omitempty"`
	DetailText string `json:"detail_text,omitempty"`
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !authorizeEmployee(w, r, employeeID) {
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid request body"})
		return
	}

	switch req.Decision {
	case "accept":
		res, err := h.lifecycle.Accept(r.Context(), employeeID, actorID(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		metrics.Decisions.WithLabelValues("accepted").Inc()
		writeJSON(w, http.StatusOK, map[string]string{
			"offer_id":   res.OfferID,
			"package_id": res.PackageID,
			"status":     string(res.Status),
		})

	case "dispute":
		opened, err := h.lifecycle.Dispute(r.Context(), onboarding.DisputeParams{
			EmployeeID: employeeID,
			ReasonCode: dispute.ReasonCode(req.ReasonCode),
			DetailText: req.DetailText,
			ActorID:    actorID(r.Context()),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		metrics.Decisions.WithLabelValues("disputed").Inc()
		writeJSON(w, http.StatusOK, map[string]string{
			"dispute_id": opened.Dispute.ID,
			"session_id": opened.SessionID,
			"status":     string(employee.StatusOfferDisputed),
		})

	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "decision must be accept or dispute"})
	}
}

type reopenRequest struct {
	Categories []offer.ReviewCategory `json:"categories"`
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	var req reopenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid request body"})
		return
	}

	rec, err := h.lifecycle.ReopenOffer(r.Context(), employeeID, req.Categories, actorID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"offer_id": rec.ID,
		"decision": string(rec.Decision),
	})
}

type messageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleDisputeMessage(w http.ResponseWriter, r *http.Request) {
	disputeID := chi.URLParam(r, "disputeID")
	if !h.authorizeDispute(w, r, disputeID) {
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid request body"})
		return
	}

	result, err := h.conversation.AppendCandidateMessage(r.Context(), disputeID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Resolved {
		metrics.DisputesResolved.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"intent":   string(result.Intent),
		"reply":    result.Reply,
		"resolved": result.Resolved,
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	disputeID := chi.URLParam(r, "disputeID")
	if !h.authorizeDispute(w, r, disputeID) {
		return
	}

	messages, err := h.conversation.Transcript(r.Context(), disputeID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		entry := map[string]any{
			"sender":  string(msg.Sender),
			"text":    msg.Text,
			"sent_at": msg.CreatedAt,
		}
		if msg.Intent != nil {
			entry["intent"] = string(*msg.Intent)
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

func (h *Handler) handleCurrentDocument(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "packageID")
	if !h.authorizePackage(w, r, packageID) {
		return
	}

	item, err := h.lifecycle.CurrentDocument(r.Context(), packageID)
	if err != nil {
		writeError(w, err)
		return
	}
	if item == nil {
		writeJSON(w, http.StatusOK, map[string]any{"complete": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": item.ID,
		"type":        item.Type,
		"required":    item.Required,
		"position":    item.Position,
	})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "packageID")
	if !h.authorizePackage(w, r, packageID) {
		return
	}

	progress, err := h.lifecycle.SigningProgress(r.Context(), packageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"signed": progress.Signed,
		"total":  progress.Total,
	})
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "packageID")
	documentID := chi.URLParam(r, "documentID")
	if !h.authorizePackage(w, r, packageID) {
		return
	}

	result, err := h.lifecycle.SignDocument(r.Context(), packageID, documentID, actorID(r.Context()))
	if err != nil {
		h.writeSignError(w, r, packageID, err)
		return
	}
	if !result.AlreadySigned {
		metrics.DocumentsSigned.Inc()
	}
	if result.PackageComplete {
		metrics.OnboardingsCompleted.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id":      result.Item.ID,
		"status":           string(result.Item.Status),
		"already_signed":   result.AlreadySigned,
		"package_complete": result.PackageComplete,
		"signed":           result.Progress.Signed,
		"total":            result.Progress.Total,
	})
}

// writeSignError enriches out-of-order rejections with the authoritative
// current document so the client can resynchronize in one round trip.
func (h *Handler) writeSignError(w http.ResponseWriter, r *http.Request, packageID string, err error) {
	var oe *onboarding.Error
	if errors.As(err, &oe) && oe.Kind == onboarding.KindSequence {
		body := errorBody{Error: string(oe.Kind), Message: oe.Message}
		if current, cerr := h.lifecycle.CurrentDocument(r.Context(), packageID); cerr == nil && current != nil {
			body.CurrentDocumentID = current.ID
		}
		writeJSON(w, http.StatusConflict, body)
		return
	}
	writeError(w, err)
}

type correctRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleCorrect(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "packageID")
	documentID := chi.URLParam(r, "documentID")
	if !h.authorizePackage(w, r, packageID) {
		return
	}

	var req correctRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid request body"})
		return
	}

	item, err := h.lifecycle.CorrectDocument(r.Context(), packageID, documentID, req.Reason, actorID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": item.ID,
		"status":      string(item.Status),
	})
}
