package executor

import (
	"context"
	"strings"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/metrics"
	"go.uber.org/zap"
)

type oneCompilerFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type oneCompilerRequest struct {
	Language string            `json:"language"`
	Stdin    string            `json:"stdin"`
	Files    []oneCompilerFile `json:"files"`
}

type oneCompilerResponse struct {
	Status        string   `json:"status"`
	Exception     *string  `json:"exception"`
	Stdout        *string  `json:"stdout"`
	Stderr        *string  `json:"stderr"`
	Error         *string  `json:"error"`
	ExecutionTime *float64 `json:"executionTime"` // ms
}

type OneCompilerClient struct {
	opts ClientOptions
	log  *zap.Logger
}

func NewOneCompilerClient(opts ClientOptions) *OneCompilerClient {
	return &OneCompilerClient{opts: opts, log: opts.logger().Named("onecompiler")}
}

func (c *OneCompilerClient) Provider() model.ExecutionProvider { return model.ProviderOneCompiler }

func (c *OneCompilerClient) Execute(ctx context.Context, code, stdin string, lang model.Language) Result {
	slug, fileName, ok := OneCompilerLanguage(lang)
	if !ok {
		metrics.ExecutorRequests.WithLabelValues(string(c.Provider()), "unsupported_language").Inc()
		return errorResult(InternalErrorPrefix + "language " + string(lang) + " is not supported by OneCompiler")
	}

	url := strings.TrimRight(c.opts.BaseURL, "/") + "/api/v1/run"
	req := oneCompilerRequest{
		Language: slug,
		Stdin:    stdin,
		Files:    []oneCompilerFile{{Name: fileName, Content: code}},
	}
	var resp oneCompilerResponse
	if err := postJSON(ctx, c.Provider(), c.opts, url, req, &resp); err != nil {
		return failureResult(c.Provider(), c.log, err)
	}
	if resp.Status == "" {
		return failureResult(c.Provider(), c.log, errMissingStatus)
	}

	result := normalizeOneCompiler(resp)
	outcome := "ok"
	if result.Failed() {
		outcome = "execution_error"
	}
	metrics.ExecutorRequests.WithLabelValues(string(c.Provider()), outcome).Inc()
	return result
}

func normalizeOneCompiler(resp oneCompilerResponse) Result {
	var result Result
	if resp.ExecutionTime != nil {
		result.Time = floatPtr(*resp.ExecutionTime / 1000)
	}

	switch {
	case resp.Status != "success":
		return withError(result, RuntimeErrorPrefix+firstNonEmpty(resp.Exception, resp.Error, resp.Stderr))
	case resp.Exception != nil && strings.TrimSpace(*resp.Exception) != "":
		return withError(result, RuntimeErrorPrefix+strings.TrimSpace(*resp.Exception))
	case resp.Stderr != nil && strings.TrimSpace(*resp.Stderr) != "":
		return withError(result, RuntimeErrorPrefix+strings.TrimSpace(*resp.Stderr))
	}
	result.Output = deref(resp.Stdout)
	return result
}
