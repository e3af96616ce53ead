package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"onboardflow/onboarding"
	"onboardflow/resolution"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// CurrentDocumentID points out-of-order signers at the authoritative
	// position so the client can resynchronize.
	CurrentDocumentID string `json:"current_document_id,omitempty"`
}

func statusFor(kind onboarding.Kind) int {
	switch kind {
	case onboarding.KindValidation:
		return http.StatusBadRequest
	case onboarding.KindNotFound:
		return http.StatusNotFound
	case onboarding.KindConflict, onboarding.KindSequence:
		return http.StatusConflict
	case onboarding.KindTransport:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a domain error as the JSON envelope. Orchestrator errors
// carry their own kind; conversation sentinels are mapped here since the
// resolution service returns them raw.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: string(onboarding.KindInternal), Message: "internal error"}
	status := http.StatusInternalServerError

	var oe *onboarding.Error
	switch {
	case errors.As(err, &oe):
		body = errorBody{Error: string(oe.Kind), Message: oe.Message}
		status = statusFor(oe.Kind)
	case errors.Is(err, resolution.ErrEmptyMessage):
		body = errorBody{Error: string(onboarding.KindValidation), Message: "message must not be empty"}
		status = http.StatusBadRequest
	case errors.Is(err, resolution.ErrSessionResolved):
		body = errorBody{Error: string(onboarding.KindConflict), Message: "the dispute is already resolved"}
		status = http.StatusConflict
	case errors.Is(err, resolution.ErrNotFound):
		body = errorBody{Error: string(onboarding.KindNotFound), Message: "no matching record"}
		status = http.StatusNotFound
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
