package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common/security"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const UserIDCtxKey contextKey = "userID"

// Identify puts the token's subject in the context. Requests without a token
// pass through anonymously; a token that fails verification is rejected.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if errors.Is(err, jwtauth.ErrNoTokenFound) || (err == nil && token == nil) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			common.RespondWithDomainError(w, common.Errorf("invalid token: %v: %w", err, common.ErrUnauthorized))
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithDomainError(w, common.Errorf("invalid token claims: %v: %w", err, common.ErrUnauthorized))
			return
		}
		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// ResolveUserID reconciles the caller's token with a user id named in the
// request. A token wins; a mismatching claimed id is forbidden.
func ResolveUserID(ctx context.Context, claimed string) (string, error) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return claimed, nil
	}
	if claimed != "" && claimed != userID {
		return "", common.Errorf("userId does not match the authenticated user: %w", common.ErrForbidden)
	}
	return userID, nil
}
