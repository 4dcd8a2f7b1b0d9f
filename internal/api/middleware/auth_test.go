package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common/security"
	"github.com/go-chi/jwtauth/v5"
	"github.com/matryer/is"
)

func identified(ta *jwtauth.JWTAuth) (http.Handler, *string) {
	var seen string
	h := jwtauth.Verifier(ta)(Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))
	return h, &seen
}

func TestIdentify(t *testing.T) {
	ta := security.NewTokenAuth([]byte("middleware-test-secret-32-bytes!"))
	valid, err := security.GenerateToken(ta, "u1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		token    string
		wantCode int
		wantUser string
	}{
		{name: "anonymous", wantCode: http.StatusNoContent},
		{name: "valid token", token: valid, wantCode: http.StatusNoContent, wantUser: "u1"},
		{name: "garbage token", token: "not.a.jwt", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			h, seen := identified(ta)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			is.Equal(rec.Code, tt.wantCode)
			is.Equal(*seen, tt.wantUser)
			if tt.wantCode == http.StatusUnauthorized {
				var body common.ErrorResponse
				is.NoErr(json.NewDecoder(rec.Body).Decode(&body))
				is.True(strings.HasSuffix(body.Error, common.ErrUnauthorized.Error()))
			}
		})
	}
}
