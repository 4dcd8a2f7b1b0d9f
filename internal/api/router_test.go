package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/executor"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/app/service"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common/security"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/matryer/is"
	"github.com/redis/go-redis/v9"
)

type stubProblems map[string][]model.TestCase

func (s stubProblems) GetTestCasesByProblemID(_ context.Context, id string) ([]model.TestCase, error) {
	return s[id], nil
}

type stubSubmissions struct {
	mu   sync.Mutex
	rows map[string]model.Submission
}

func (s *stubSubmissions) CreateSubmission(_ context.Context, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sub.ID] = *sub
	return nil
}

func (s *stubSubmissions) GetSubmissionByID(_ context.Context, id string) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &sub, nil
}

func (s *stubSubmissions) UpdateSubmissionResult(ctx context.Context, sub *model.Submission) error {
	return s.CreateSubmission(ctx, sub)
}

type stubProgress struct {
	mu   sync.Mutex
	rows map[string]model.UserProblemProgress
}

func (s *stubProgress) GetProgress(_ context.Context, userID, problemID string) (*model.UserProblemProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[userID+"/"+problemID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *stubProgress) UpsertProgress(_ context.Context, p *model.UserProblemProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p.UserID+"/"+p.ProblemID] = *p
	return nil
}

// echoExecutor prints stdin back, except for code "throttle".
type echoExecutor struct{}

func (echoExecutor) Provider() model.ExecutionProvider { return model.ProviderJudge0 }

func (echoExecutor) Execute(_ context.Context, code, stdin string, _ model.Language) executor.Result {
	if code == "throttle" {
		msg := executor.RateLimitMessage
		return executor.Result{Output: msg, Error: &msg, IsRateLimited: true}
	}
	return executor.Result{Output: stdin}
}

const secret = "test-secret-with-enough-bytes-for-hs256"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	problems := stubProblems{"echo": {
		{ID: "1", Input: "a", ExpectedOutput: "a", IsExample: true, OrderIndex: 0},
		{ID: "2", Input: "b", ExpectedOutput: "b", OrderIndex: 1},
	}}
	subs := &stubSubmissions{rows: map[string]model.Submission{}}
	progress := &stubProgress{rows: map[string]model.UserProblemProgress{}}
	selector := executor.NewSelector(model.ProviderJudge0, echoExecutor{})

	submissions := service.NewSubmissionService(problems, subs, progress, selector, nil)
	jobs := service.NewExecutionJobService(repository.NewRedisExecutionJobRepository(rdb, time.Hour), rdb, "q", nil)

	problemSvc := service.NewProblemService(problems)

	srv := httptest.NewServer(NewRouter(submissions, jobs, problemSvc, RouterOptions{TokenAuth: security.NewTokenAuth([]byte(secret))}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := security.GenerateToken(security.NewTokenAuth([]byte(secret)), userID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func submission(user, code string) map[string]string {
	return map[string]string{"problemId": "echo", "userId": user, "code": code, "language": "python"}
}

func TestSubmitEndpoint(t *testing.T) {
	is := is.New(t)
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/submissions", "", submission("u1", "print(input())"))
	is.Equal(resp.StatusCode, http.StatusOK)
	sub := body["submission"].(map[string]any)
	is.Equal(sub["status"], "accepted")
	is.Equal(sub["passed_test_cases"], 2.0)
	is.Equal(len(body["test_results"].([]any)), 2)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/v1/submissions/"+sub["id"].(string), "", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["status"], "accepted")

	resp, body = do(t, http.MethodGet, srv.URL+"/api/v1/progress/echo?userId=u1", "", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["is_solved"], true)
	is.Equal(body["total_attempts"], 1.0)
}

func TestSubmitEndpointErrors(t *testing.T) {
	srv := newTestServer(t)
	noCases := submission("u1", "x")
	noCases["problemId"] = "missing"

	tests := []struct {
		name  string
		token string
		body  any
		want  int
	}{
		{name: "missing language", body: map[string]string{"problemId": "echo", "userId": "u1", "code": "x"}, want: http.StatusBadRequest},
		{name: "no test cases", body: noCases, want: http.StatusBadRequest},
		{name: "rate limited", body: submission("u1", "throttle"), want: http.StatusTooManyRequests},
		{name: "token for someone else", token: tokenFor(t, "u2"), body: submission("u1", "x"), want: http.StatusForbidden},
		{name: "garbage token", token: "not.a.jwt", body: submission("u1", "x"), want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/submissions", tt.token, tt.body)
			is.Equal(resp.StatusCode, tt.want)
		})
	}
}

func TestTokenSubjectIsTheUser(t *testing.T) {
	is := is.New(t)
	srv := newTestServer(t)
	req := submission("", "x")
	delete(req, "userId")

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/submissions", tokenFor(t, "u9"), req)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["submission"].(map[string]any)["user_id"], "u9")
}

func TestAsyncSubmission(t *testing.T) {
	is := is.New(t)
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/submissions/async", "", submission("u1", "x"))
	is.Equal(resp.StatusCode, http.StatusAccepted)
	jobID := body["job_id"].(string)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/v1/submissions/jobs/"+jobID, "", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["status"], model.JobStatusQueued)
}

func TestExecuteAndLanguages(t *testing.T) {
	is := is.New(t)
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/execute", "", map[string]string{"code": "x", "language": "go", "stdin": "hi"})
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["output"], "hi")

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/execute", "", map[string]string{"code": "throttle", "language": "go"})
	is.Equal(resp.StatusCode, http.StatusTooManyRequests)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/v1/languages/python", "", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body["judge0_id"], 71.0)
	is.Equal(body["supports_onecompiler"], true)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/languages/cobol", "", nil)
	is.Equal(resp.StatusCode, http.StatusNotFound)

	listResp, err := http.Get(srv.URL + "/api/v1/languages")
	is.NoErr(err)
	defer listResp.Body.Close()
	var langs []executor.LanguageInfo
	is.NoErr(json.NewDecoder(listResp.Body).Decode(&langs))
	is.Equal(len(langs), len(model.Languages))
}

func TestHealthAndMetrics(t *testing.T) {
	is := is.New(t)
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	is.NoErr(err)
	resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusOK)

	resp, err = http.Get(srv.URL + "/metrics")
	is.NoErr(err)
	defer resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
}

func TestExamplesHideHiddenCases(t *testing.T) {
	is := is.New(t)
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/problems/echo/examples")
	is.NoErr(err)
	defer resp.Body.Close()
	is.Equal(resp.StatusCode, http.StatusOK)

	var cases []model.TestCase
	is.NoErr(json.NewDecoder(resp.Body).Decode(&cases))
	is.Equal(len(cases), 1)
	is.Equal(cases[0].Input, "a")

	missing, err := http.Get(srv.URL + "/api/v1/problems/nope/examples")
	is.NoErr(err)
	missing.Body.Close()
	is.Equal(missing.StatusCode, http.StatusNotFound)
}
