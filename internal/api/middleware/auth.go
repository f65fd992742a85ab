package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/auth"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// CallerKey is the context key for the authenticated caller
	CallerKey ContextKey = "caller"
)

// AccessTokenCookie is the cookie consulted when no Authorization header is sent
const AccessTokenCookie = "accessToken"

// AuthMiddleware resolves the bearer access token into an access.Caller.
// Requests without a valid access token are rejected with 401.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			caller, ok := callerFromToken(tokenStr, jwtSecret)
			if !ok {
				utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
				return
			}

			AddLogField(w, "account_id", caller.AccountID)
			AddLogField(w, "role", string(caller.Role))

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// RequireAction rejects callers whose role does not hold action. Refusals
// of authenticated callers are recorded as security events.
func RequireAction(action access.Action, auditSvc audit.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := GetCaller(r)
			if err := access.Authorize(caller, action); err != nil {
				if auditSvc != nil && stderrors.Is(err, access.ErrForbidden) {
					id := caller.AccountID
					auditSvc.Record(r.Context(), audit.Entry{
						AccountID: &id,
						EventType: audit.EventSecurity,
						Action:    "forbidden",
						Metadata: map[string]interface{}{
							"action": string(action),
							"role":   string(caller.Role),
							"path":   r.URL.Path,
						},
					})
				}
				appErr, _ := errors.As(err)
				utils.WriteError(w, appErr)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func callerFromToken(tokenStr, secret string) (access.Caller, bool) {
	claims, err := auth.ParseTyped(tokenStr, secret, auth.TokenTypeAccess)
	if err != nil {
		return access.Caller{}, false
	}
	caller := access.Caller{
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Role:      account.Role(claims.Role),
	}
	return caller, caller.Authenticated()
}

// WithCaller stores the caller in ctx
func WithCaller(ctx context.Context, c access.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, c)
}

// GetCaller returns the request's caller; anonymous when none was resolved
func GetCaller(r *http.Request) access.Caller {
	c, _ := r.Context().Value(CallerKey).(access.Caller)
	return c
}
