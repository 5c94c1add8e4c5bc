package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/rs/zerolog/log"
)

// UserLookup loads the current state of an account.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

type contextKey string

const principalKey = contextKey("principal")

// Resolver turns bearer tokens into users.
type Resolver struct {
	tokens *TokenManager
	users  UserLookup
}

// NewResolver creates a Resolver.
func NewResolver(tokens *TokenManager, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// ResolvePrincipal returns the user a token belongs to. Any failure,
// including lookup errors, yields ok=false.
func (r *Resolver) ResolvePrincipal(ctx context.Context, token string) (models.User, bool) {
	if token == "" {
		return models.User{}, false
	}

	claims, err := r.tokens.Parse(token)
	if err != nil {
		log.Debug().Err(err).Msg("Rejected bearer token")
		return models.User{}, false
	}

	user, err := r.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if !models.IsKind(err, models.KindNotFound) {
			log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to load token owner")
		}
		return models.User{}, false
	}

	// Tokens issued before a password reset or revocation are stale.
	if user.TokenVersion != claims.TokenVersion {
		return models.User{}, false
	}
	return user, true
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer token with 401.
func (r *Resolver) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		user, ok := r.ResolvePrincipal(req.Context(), BearerToken(req))
		if !ok {
			writeAuthError(w, models.NewAuthError("Invalid or missing token"))
			return
		}
		next.ServeHTTP(w, req.WithContext(WithPrincipal(req.Context(), user)))
	})
}

// RequireAdmin is RequireAuth plus a 403 for non-admin principals.
func (r *Resolver) RequireAdmin(next http.Handler) http.Handler {
	return r.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		user, _ := PrincipalFromContext(req.Context())
		if !user.IsAdmin {
			writeAuthError(w, models.NewAuthorizationError("Admin access required"))
			return
		}
		next.ServeHTTP(w, req)
	}))
}

// WithPrincipal returns a copy of ctx carrying user.
func WithPrincipal(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

// PrincipalFromContext returns the authenticated user stored by RequireAuth.
func PrincipalFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(principalKey).(models.User)
	return user, ok
}

func writeAuthError(w http.ResponseWriter, err *models.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	json.NewEncoder(w).Encode(map[string]string{"error": err.Message})
}
