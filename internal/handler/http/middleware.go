package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/pkg/httputil"
)

type contextKey string

const (
	organizationKey contextKey = "organization_id"
	userKey         contextKey = "user"
)

// RequireOrganization resolves the caller's organization from the
// X-Organization-ID header set by the gateway. Requests without a valid
// organization are rejected before reaching any handler.
func RequireOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Organization-ID")
		if raw == "" {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "missing organization context"},
			})
			return
		}

		orgID, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid organization context"},
			})
			return
		}

		ctx := context.WithValue(r.Context(), organizationKey, orgID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identity resolves the authenticated user from gateway headers. Absence of
// X-User-ID means a guest request; handlers receive a nil user.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user := &domain.User{
			ID:                  userID,
			Email:               r.Header.Get("X-User-Email"),
			EmailVerified:       r.Header.Get("X-User-Email-Verified") == "true",
			PhoneNumber:         r.Header.Get("X-User-Phone"),
			PhoneNumberVerified: r.Header.Get("X-User-Phone-Verified") == "true",
			FirstName:           r.Header.Get("X-User-First-Name"),
			LastName:            r.Header.Get("X-User-Last-Name"),
			Name:                r.Header.Get("X-User-Name"),
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OrganizationFromContext returns the organization id set by RequireOrganization.
func OrganizationFromContext(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(organizationKey).(uuid.UUID)
	return orgID, ok
}

// UserFromContext returns the authenticated user, or nil for guests.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}
