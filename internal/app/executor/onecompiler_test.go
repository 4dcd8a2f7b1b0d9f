package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/matryer/is"
)

func newOneCompilerServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/v1/run" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req oneCompilerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Language != "python" || len(req.Files) != 1 || req.Files[0].Name != "index.py" {
			t.Errorf("unexpected payload %+v", req)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestOneCompilerSuccess(t *testing.T) {
	is := is.New(t)
	srv, _ := newOneCompilerServer(t, http.StatusOK, `{"status":"success","exception":null,"stdout":"hello\n","stderr":null,"executionTime":250}`)

	res := NewOneCompilerClient(ClientOptions{BaseURL: srv.URL}).Execute(context.Background(), "print('hello')", "", model.LanguagePython)
	is.True(!res.Failed())
	is.Equal(res.Output, "hello\n")
	is.Equal(res.RuntimeMs(), 250.0)
	is.True(res.Memory == nil)
}

func TestOneCompilerFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "exception", body: `{"status":"success","exception":"Traceback: NameError","stdout":""}`, want: "NameError"},
		{name: "stderr", body: `{"status":"success","stderr":"warning: boom","stdout":"1"}`, want: "warning: boom"},
		{name: "failed status", body: `{"status":"failed","error":"quota exceeded"}`, want: "quota exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			srv, _ := newOneCompilerServer(t, http.StatusOK, tt.body)

			res := NewOneCompilerClient(ClientOptions{BaseURL: srv.URL}).Execute(context.Background(), "code", "", model.LanguagePython)
			is.True(res.Failed())
			is.True(strings.HasPrefix(res.Output, RuntimeErrorPrefix))
			is.True(strings.Contains(res.Output, tt.want))
		})
	}
}

func TestOneCompilerRateLimited(t *testing.T) {
	is := is.New(t)
	srv, _ := newOneCompilerServer(t, http.StatusTooManyRequests, `{"message":"You have exceeded the rate limit"}`)

	res := NewOneCompilerClient(ClientOptions{BaseURL: srv.URL}).Execute(context.Background(), "code", "", model.LanguagePython)
	is.True(res.IsRateLimited)
	is.Equal(res.Output, RateLimitMessage)
}

func TestOneCompilerUnsupportedLanguage(t *testing.T) {
	is := is.New(t)
	srv, calls := newOneCompilerServer(t, http.StatusOK, `{}`)

	res := NewOneCompilerClient(ClientOptions{BaseURL: srv.URL}).Execute(context.Background(), "int main(){}", "", model.LanguageCpp)
	is.True(res.Failed())
	is.True(strings.Contains(res.Output, "not supported by OneCompiler"))
	is.Equal(calls.Load(), int32(0)) // no request is made
}
