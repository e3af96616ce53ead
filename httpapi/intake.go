package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"onboardflow/intake"
	"onboardflow/onboarding"
)

// candidateFlow is the recruiter intake wizard. The step table is static, so
// one flow value serves every concurrent run; per-run state travels with the
// client between calls.
var candidateFlow = mustCandidateFlow()

func mustCandidateFlow() *intake.Flow {
	flow, err := intake.NewCandidateProfileFlow()
	if err != nil {
		panic(err)
	}
	return flow
}

type intakeStateBody struct {
	Answers  map[string]string `json:"answers"`
	Index    int               `json:"index"`
	Complete bool              `json:"complete"`
}

type intakeAnswerRequest struct {
	State  intakeStateBody `json:"state"`
	Answer string          `json:"answer"`
}

func (h *Handler) handleIntakeStart(w http.ResponseWriter, _ *http.Request) {
	writeIntakeState(w, candidateFlow.Start())
}

func (h *Handler) handleIntakeAnswer(w http.ResponseWriter, r *http.Request) {
	var req intakeAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: "invalid request body"})
		return
	}

	state := intake.State{
		Answers:  intake.Answers(req.State.Answers),
		Index:    req.State.Index,
		Complete: req.State.Complete,
	}
	if state.Answers == nil {
		state.Answers = intake.Answers{}
	}

	next, err := candidateFlow.Reduce(state, req.Answer)
	if err != nil {
		if errors.Is(err, intake.ErrFlowComplete) {
			writeJSON(w, http.StatusConflict, errorBody{Error: string(onboarding.KindConflict), Message: "intake is already complete"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: string(onboarding.KindValidation), Message: err.Error()})
		return
	}
	writeIntakeState(w, next)
}

func writeIntakeState(w http.ResponseWriter, state intake.State) {
	body := map[string]any{
		"state": intakeStateBody{
			Answers:  map[string]string(state.Answers),
			Index:    state.Index,
			Complete: state.Complete,
		},
		"steps": candidateFlow.Steps(),
	}
	if step, ok := candidateFlow.Current(state); ok {
		body["step_key"] = step.Key
		body["prompt"] = step.Prompt
		body["optional"] = step.Optional
	}
	writeJSON(w, http.StatusOK, body)
}
