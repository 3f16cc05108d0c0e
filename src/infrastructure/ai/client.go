package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainErrors "restaurant-crm-api/src/domain/errors"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

const DefaultModel = "google/gemini-2.5-flash"

// CompletionRequest is one system+user prompt pair.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

type CompleterInterface interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// Client speaks the OpenAI-compatible /chat/completions protocol.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	Logger     *logger.Logger
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, loggerInstance *logger.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		Logger:     loggerInstance,
	}
}

func (c *Client) buildBody(req *CompletionRequest) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "model", c.model)
	if err != nil {
		return nil, err
	}
	i := 0
	if req.SystemPrompt != "" {
		if body, err = sjson.SetBytes(body, "messages.0", map[string]string{"role": "system", "content": req.SystemPrompt}); err != nil {
			return nil, err
		}
		i++
	}
	if body, err = sjson.SetBytes(body, fmt.Sprintf("messages.%d", i), map[string]string{"role": "user", "content": req.UserPrompt}); err != nil {
		return nil, err
	}
	if req.MaxTokens > 0 {
		if body, err = sjson.SetBytes(body, "max_tokens", req.MaxTokens); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (c *Client) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return "", domainErrors.NewAppError(fmt.Errorf("AI_API_KEY is not configured"), domainErrors.ServiceUnavailable)
	}

	body, err := c.buildBody(req)
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.Logger.Error("AI gateway request failed", zap.Error(err))
		return "", domainErrors.NewAppError(fmt.Errorf("AI gateway unreachable: %w", err), domainErrors.UpstreamError)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.Logger.Warn("AI gateway error", zap.Int("statusCode", resp.StatusCode),
			zap.String("error", gjson.GetBytes(raw, "error.message").String()))
		return "", domainErrors.NewAppError(fmt.Errorf("AI gateway error: %d", resp.StatusCode), domainErrors.UpstreamError)
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return "", domainErrors.NewAppError(fmt.Errorf("AI gateway returned no choices"), domainErrors.UpstreamError)
	}
	return strings.TrimSpace(content.String()), nil
}
