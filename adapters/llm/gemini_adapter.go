package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/internal/config"
	"github.com/khoahotran/career-compass/internal/domain/analysis"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

// GeminiAdvisorFactory builds advisors that talk to Gemini through its
// OpenAI-compatible endpoint, one per user API key.
type GeminiAdvisorFactory struct {
	baseURL    string
	model      string
	httpClient *http.Client
	log        logger.Logger
}

var _ service.CareerAdvisorFactory = (*GeminiAdvisorFactory)(nil)

func NewGeminiAdvisorFactory(cfg config.Config, log logger.Logger) (*GeminiAdvisorFactory, error) {
	if cfg.Gemini.BaseURL == "" {
		return nil, fmt.Errorf("gemini base url is not configured")
	}
	if cfg.Gemini.Model == "" {
		return nil, fmt.Errorf("gemini model is not configured")
	}

	log.Info("Gemini career advisor initialized", zap.String("model", cfg.Gemini.Model))
	return &GeminiAdvisorFactory{
		baseURL:    strings.TrimRight(cfg.Gemini.BaseURL, "/"),
		model:      cfg.Gemini.Model,
		httpClient: &http.Client{},
		log:        log,
	}, nil
}

func (f *GeminiAdvisorFactory) ForAPIKey(apiKey string) service.CareerAdvisor {
	c := openai.DefaultConfig(apiKey)
	c.BaseURL = f.baseURL
	c.HTTPClient = f.httpClient
	return &geminiAdvisor{
		client: openai.NewClientWithConfig(c),
		model:  f.model,
		log:    f.log,
	}
}

type geminiAdvisor struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

func (a *geminiAdvisor) AnalyzeCareerPaths(ctx context.Context, p analysis.ProfileSnapshot) ([]analysis.CareerPath, error) {
	return a.complete(ctx, "analyze", analyzePrompt(p))
}

func (a *geminiAdvisor) SearchCareerPath(ctx context.Context, p analysis.ProfileSnapshot, query string) ([]analysis.CareerPath, error) {
	return a.complete(ctx, "search", searchPrompt(p, query))
}

func (a *geminiAdvisor) complete(ctx context.Context, operation, prompt string) ([]analysis.CareerPath, error) {
	start := time.Now()
	paths, err := a.doComplete(ctx, prompt)
	aiRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		a.log.Warn("Gemini request failed", zap.String("operation", operation), zap.Error(err))
	}
	aiRequestsTotal.WithLabelValues(operation, status).Inc()
	return paths, err
}

func (a *geminiAdvisor) doComplete(ctx context.Context, prompt string) ([]analysis.CareerPath, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Stream: false,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("gemini returned no choices")
	}
	return parseCareerPaths(resp.Choices[0].Message.Content)
}

// mapProviderError turns provider status codes into client-facing errors.
func mapProviderError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperror.NewUnauthorized("Invalid Gemini API key", err)
	case http.StatusBadRequest:
		return apperror.NewInvalidInput("Gemini rejected the request: "+providerMessage(err), err)
	case 0:
		return fmt.Errorf("gemini chat completion request failed: %w", err)
	default:
		return fmt.Errorf("gemini chat completion request failed with status %d: %w", status, err)
	}
}

func providerMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

type careerPathsEnvelope struct {
	CareerPaths []analysis.CareerPath `json:"career_paths"`
}

// parseCareerPaths accepts the JSON object the prompt asks for, a bare array,
// or either of them wrapped in a markdown code fence.
func parseCareerPaths(content string) ([]analysis.CareerPath, error) {
	content = stripCodeFence(content)
	if content == "" {
		return nil, fmt.Errorf("gemini returned an empty answer")
	}

	if strings.HasPrefix(content, "[") {
		var paths []analysis.CareerPath
		if err := json.Unmarshal([]byte(content), &paths); err != nil {
			return nil, fmt.Errorf("decode career paths: %w", err)
		}
		return paths, nil
	}

	var env careerPathsEnvelope
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		return nil, fmt.Errorf("decode career paths: %w", err)
	}
	if env.CareerPaths == nil {
		return nil, fmt.Errorf("gemini answer has no career_paths field")
	}
	return env.CareerPaths, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
