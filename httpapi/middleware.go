package httpapi

import (
	"context"
	"net/http"
	"strings"

	"onboardflow/auth"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// TokenVerifier validates bearer tokens (auth.Service).
type TokenVerifier interface {
	VerifyToken(token string) (auth.Claims, error)
}

// requireAuth rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func requireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "missing bearer token"})
				return
			}
			claims, err := verifier.VerifyToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "invalid token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// requireStaff restricts a route to recruiter and hr_admin tokens.
func requireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims.Role != auth.RoleRecruiter && claims.Role != auth.RoleHRAdmin {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden", Message: "staff access required"})
			return
		}
		next(w, r)
	}
}

func claimsFrom(ctx context.Context) auth.Claims {
	claims, _ := ctx.Value(claimsKey).(auth.Claims)
	return claims
}

// actorID yields the timeline actor for a request: the staff user id, or nil
// for candidate self-service actions.
func actorID(ctx context.Context) *string {
	claims := claimsFrom(ctx)
	if claims.UserID == "" {
		return nil
	}
	id := claims.UserID
	return &id
}

// authorizeEmployee rejects a candidate token bound to a different employee.
// Staff tokens pass through.
func authorizeEmployee(w http.ResponseWriter, r *http.Request, employeeID string) bool {
	claims := claimsFrom(r.Context())
	if claims.Role == auth.RoleCandidate && claims.EmployeeID != employeeID {
		writeJSON(w, http.StatusForbidden, errorBody{
			Error:   "forbidden",
			Message: "token is not valid for this candidate",
		})
		return false
	}
	return true
}

// authorizePackage confines candidate tokens to packages owned by their own
// employee record. Staff tokens skip the lookup.
func (h *Handler) authorizePackage(w http.ResponseWriter, r *http.Request, packageID string) bool {
	if claimsFrom(r.Context()).Role != auth.RoleCandidate {
		return true
	}
	owner, err := h.lifecycle.PackageOwner(r.Context(), packageID)
	if err != nil {
		writeError(w, err)
		return false
	}
	return authorizeEmployee(w, r, owner)
}

// authorizeDispute confines candidate tokens to their own dispute cases.
func (h *Handler) authorizeDispute(w http.ResponseWriter, r *http.Request, disputeID string) bool {
	if claimsFrom(r.Context()).Role != auth.RoleCandidate {
		return true
	}
	owner, err := h.lifecycle.DisputeOwner(r.Context(), disputeID)
	if err != nil {
		writeError(w, err)
		return false
	}
	return authorizeEmployee(w, r, owner)
}
