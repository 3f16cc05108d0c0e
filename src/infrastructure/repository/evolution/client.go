package evolution

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"restaurant-crm-api/src/domain/channel"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

const maxResponseBytes = 64 << 10

// Client talks to an Evolution API server, one instance per restaurant.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	Logger     *logger.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, loggerInstance *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		Logger:     loggerInstance,
	}
}

var _ channel.Gateway = (*Client)(nil)

func (c *Client) sendTextURL(instance string) string {
	return c.baseURL + "/message/sendText/" + url.PathEscape(instance)
}

func buildPayload(msg *channel.OutboundMessage) ([]byte, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), "number", msg.Phone)
	if err != nil {
		return nil, err
	}
	if payload, err = sjson.SetBytes(payload, "text", msg.Text); err != nil {
		return nil, err
	}
	if msg.MediaURL != "" {
		if payload, err = sjson.SetBytes(payload, "mediaUrl", msg.MediaURL); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// SendText posts one message. Every failure comes back as a *channel.Error.
func (c *Client) SendText(ctx context.Context, msg *channel.OutboundMessage) (*channel.Receipt, error) {
	if c.baseURL == "" {
		return nil, channel.NewNonRecoverableError(0, "messaging gateway is not configured", nil)
	}
	if msg.Instance == "" {
		return nil, channel.NewNonRecoverableError(0, "no messaging instance configured for restaurant", nil)
	}
	phone := channel.NormalizePhone(msg.Phone)
	if phone == "" {
		return nil, channel.NewNonRecoverableError(0, "recipient has no phone number", nil)
	}
	normalized := *msg
	normalized.Phone = phone

	body, err := buildPayload(&normalized)
	if err != nil {
		return nil, channel.NewNonRecoverableError(0, "could not encode message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendTextURL(msg.Instance), bytes.NewReader(body))
	if err != nil {
		return nil, channel.NewNonRecoverableError(0, "could not build gateway request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("apikey", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		category := channel.ClassifyTransport(err)
		c.Logger.Warn("Gateway request failed", zap.Error(err),
			zap.String("instance", msg.Instance), zap.String("category", string(category)))
		reason := "gateway unreachable: " + err.Error()
		if category == channel.CategoryTransient {
			return nil, channel.NewTransientError(0, reason, err)
		}
		return nil, channel.NewNonRecoverableError(0, reason, err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := errorMessage(raw, resp.StatusCode)
		c.Logger.Warn("Gateway rejected message",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("instance", msg.Instance),
			zap.String("reason", reason))
		if channel.IsTransientStatus(resp.StatusCode) {
			return nil, channel.NewTransientError(resp.StatusCode, reason, nil)
		}
		return nil, channel.NewNonRecoverableError(resp.StatusCode, reason, nil)
	}
	if readErr != nil {
		c.Logger.Warn("Could not read gateway response", zap.Error(readErr))
	}

	receipt := &channel.Receipt{StatusCode: resp.StatusCode, MessageID: gjson.GetBytes(raw, "key.id").String()}
	c.Logger.Debug("Gateway accepted message",
		zap.String("instance", msg.Instance),
		zap.String("messageID", receipt.MessageID))
	return receipt, nil
}

// errorMessage pulls a human readable reason out of an error body.
func errorMessage(raw []byte, status int) string {
	for _, path := range []string{"message", "error", "response.message"} {
		v := gjson.GetBytes(raw, path)
		if !v.Exists() {
			continue
		}
		if v.IsArray() {
			parts := make([]string, 0, len(v.Array()))
			for _, item := range v.Array() {
				parts = append(parts, item.String())
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
			continue
		}
		if s := v.String(); s != "" {
			return s
		}
	}
	return fmt.Sprintf("status %d", status)
}
