package executor

import (
	"context"
	"strconv"
	"strings"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/metrics"
	"go.uber.org/zap"
)

// Judge0 status ids. Anything above judge0LastCleanStatus is a failure of
// some kind; 4 (Wrong Answer) only shows up when expected_output is sent,
// which we never do.
const (
	judge0StatusAccepted      = 3
	judge0LastCleanStatus     = 4
	judge0StatusTimeLimit     = 5
	judge0StatusCompileError  = 6
	judge0FirstRuntimeError   = 7
	judge0LastRuntimeError    = 12
	judge0StatusInternalError = 13
)

type judge0Request struct {
	LanguageID int    `json:"language_id"`
	SourceCode string `json:"source_code"`
	Stdin      string `json:"stdin"`
}

type judge0Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type judge0Response struct {
	Stdout        *string       `json:"stdout"`
	Stderr        *string       `json:"stderr"`
	CompileOutput *string       `json:"compile_output"`
	Message       *string       `json:"message"`
	Time          *string       `json:"time"`   // seconds, as a decimal string
	Memory        *float64      `json:"memory"` // KB
	Status        *judge0Status `json:"status"`
}

type Judge0Client struct {
	opts ClientOptions
	log  *zap.Logger
}

func NewJudge0Client(opts ClientOptions) *Judge0Client {
	return &Judge0Client{opts: opts, log: opts.logger().Named("judge0")}
}

func (c *Judge0Client) Provider() model.ExecutionProvider { return model.ProviderJudge0 }

func (c *Judge0Client) Execute(ctx context.Context, code, stdin string, lang model.Language) Result {
	languageID, known := Judge0LanguageID(lang)
	if !known {
		c.log.Warn("unknown language, using fallback", zap.String("language", string(lang)), zap.String("fallback", string(FallbackLanguage)))
	}

	url := strings.TrimRight(c.opts.BaseURL, "/") + "/submissions?base64_encoded=false&wait=true"
	var resp judge0Response
	if err := postJSON(ctx, c.Provider(), c.opts, url, judge0Request{LanguageID: languageID, SourceCode: code, Stdin: stdin}, &resp); err != nil {
		return failureResult(c.Provider(), c.log, err)
	}
	if resp.Status == nil {
		return failureResult(c.Provider(), c.log, errMissingStatus)
	}

	result := normalizeJudge0(resp)
	outcome := "ok"
	if result.Failed() {
		outcome = "execution_error"
	}
	metrics.ExecutorRequests.WithLabelValues(string(c.Provider()), outcome).Inc()
	return result
}

func normalizeJudge0(resp judge0Response) Result {
	var result Result
	if resp.Time != nil {
		if secs, err := strconv.ParseFloat(strings.TrimSpace(*resp.Time), 64); err == nil {
			result.Time = floatPtr(secs)
		}
	}
	if resp.Memory != nil {
		result.Memory = floatPtr(*resp.Memory)
	}

	status := resp.Status
	switch {
	case status.ID == judge0StatusAccepted || status.ID == judge0LastCleanStatus:
		result.Output = deref(resp.Stdout)
		return result
	case status.ID < judge0StatusAccepted:
		return withError(result, InternalErrorPrefix+"execution did not finish ("+status.Description+")")
	case status.ID == judge0StatusTimeLimit:
		return withError(result, TimeLimitExceeded)
	case status.ID == judge0StatusCompileError:
		return withError(result, CompileErrorPrefix+firstNonEmpty(resp.CompileOutput, resp.Message, &status.Description))
	case status.ID >= judge0FirstRuntimeError && status.ID <= judge0LastRuntimeError:
		return withError(result, RuntimeErrorPrefix+firstNonEmpty(resp.Stderr, resp.Message, &status.Description))
	default:
		return withError(result, InternalErrorPrefix+firstNonEmpty(resp.Message, &status.Description))
	}
}

func withError(r Result, msg string) Result {
	r.Output = msg
	r.Error = &msg
	return r
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return "unknown error"
}
