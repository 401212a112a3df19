// The authorization gate. Every privileged route passes through requireAdmin,
// which runs an ordered, short-circuiting chain: feature gate, bearer
// extraction, structural token pre-check, identity verification against the
// auth project, role lookup. Each step yields a distinct failure code so
// callers can tell disabled from unauthenticated from unauthorized, and no
// role information leaks to callers that never authenticated.

package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scraphq/admind/pkg/config"
	"github.com/scraphq/admind/pkg/dataservice"
)

// Role is a user's stored role.
type Role string

// RoleAdmin is the only role the gate admits.
const RoleAdmin Role = "admin"

// IsAdmin reports whether the role grants admin access. The comparison is
// case-insensitive.
func (r Role) IsAdmin() bool {
	return strings.EqualFold(string(r), string(RoleAdmin))
}

// Principal is the verified identity a request acts as.
type Principal struct {
	UserID string
	Role   Role
}

type contextKey int

const (
	principalContextKey contextKey = iota
	requestIDContextKey
)

// PrincipalFrom returns the principal the gate attached to ctx.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok
}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// Gate denial messages.
const (
	msgAdminDisabled = "admin access is disabled"
	msgMissingBearer = "missing bearer token"
	msgInvalidBearer = "invalid bearer token"
	msgTokenExpired  = "token expired"
	msgInvalidToken  = "invalid or expired token"
	msgAdminRequired = "admin access required"
)

// denial is a terminal gate failure.
type denial struct {
	status  int
	message string
}

func deny(status int, message string) *denial {
	return &denial{status: status, message: message}
}

// requireAdmin wraps a privileged handler with the authorization gate.
func (a *API) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, denied := a.authorize(r)
		if denied != nil {
			writeError(w, denied.status, denied.message)
			return
		}
		next(w, r.WithContext(withPrincipal(r.Context(), principal)))
	}
}

// authorize runs the gate steps in order, terminal on the first failure.
// Nothing is cached between requests.
func (a *API) authorize(r *http.Request) (*Principal, *denial) {
	if !a.cfg.AdminEnabled {
		return nil, deny(http.StatusForbidden, msgAdminDisabled)
	}

	token, ok := bearerToken(r)
	if !ok {
		return nil, deny(http.StatusUnauthorized, msgMissingBearer)
	}

	if denied := precheckToken(token); denied != nil {
		return nil, denied
	}

	user, denied := a.verifyIdentity(r.Context(), token)
	if denied != nil {
		return nil, denied
	}

	role, denied := a.lookupRole(r.Context(), user.ID)
	if denied != nil {
		return nil, denied
	}
	if !role.IsAdmin() {
		return nil, deny(http.StatusForbidden, msgAdminRequired)
	}

	return &Principal{UserID: user.ID, Role: role}, nil
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// precheckToken rejects tokens that cannot possibly verify, without a
// network call: malformed tokens and tokens already past their expiry. The
// auth project stays authoritative for everything else (signature,
// revocation, audience).
func precheckToken(token string) *denial {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return deny(http.StatusUnauthorized, msgInvalidBearer)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return deny(http.StatusUnauthorized, msgInvalidBearer)
	}
	if exp != nil && exp.Before(time.Now()) {
		return deny(http.StatusUnauthorized, msgTokenExpired)
	}
	return nil
}

// verifyIdentity exchanges the token for a verified identity, always against
// the auth project. A rejected credential is a 401; a transport or otherwise
// unexpected failure is a 500, so callers can tell a bad token from a broken
// verifier.
func (a *API) verifyIdentity(ctx context.Context, token string) (*dataservice.AuthUser, *denial) {
	client, err := a.factory.BearerClient(token)
	if err != nil {
		a.log.Error("building bearer client", "error", err)
		return nil, deny(http.StatusInternalServerError, ErrMsgInternalError)
	}

	user, err := client.VerifyToken(ctx)
	if err != nil {
		var apiErr *dataservice.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			return nil, deny(http.StatusUnauthorized, msgInvalidToken)
		}
		a.log.Error("verifying bearer token", "error", err)
		return nil, deny(http.StatusInternalServerError, ErrMsgInternalError)
	}
	if user.ID == "" {
		return nil, deny(http.StatusUnauthorized, msgInvalidToken)
	}
	return user, nil
}

// profileRow is the slice of the profiles row the gate reads.
type profileRow struct {
	Role string `json:"role"`
}

// lookupRole fetches the stored role for a verified user id with the
// privileged service client. A rejected query passes the upstream message
// through as a 400; a missing profile row means no role was ever granted.
func (a *API) lookupRole(ctx context.Context, userID string) (Role, *denial) {
	client, err := a.factory.ServiceClient(config.ProjectAuth)
	if err != nil {
		a.log.Error("building auth service client", "error", err)
		return "", deny(http.StatusInternalServerError, ErrMsgInternalError)
	}

	var rows []profileRow
	err = client.Select(ctx, "profiles", dataservice.Query{
		Select:  "role",
		Filters: map[string]string{"id": dataservice.Eq(userID)},
		Limit:   1,
	}, &rows)
	if err != nil {
		var apiErr *dataservice.APIError
		if errors.As(err, &apiErr) {
			return "", deny(http.StatusBadRequest, apiErr.Message)
		}
		a.log.Error("looking up role", "error", err, "userId", userID)
		return "", deny(http.StatusInternalServerError, ErrMsgInternalError)
	}
	if len(rows) == 0 {
		return "", deny(http.StatusForbidden, msgAdminRequired)
	}
	return Role(rows[0].Role), nil
}
