package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "restaurant-crm-api/src/domain/errors"
	logger "restaurant-crm-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var body []byte
	var auth, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Happy birthday, Ana!  "}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "key", "", time.Second, logger.NewNopLogger())
	out, err := client.Complete(context.Background(), &CompletionRequest{SystemPrompt: "sys", UserPrompt: "user"})
	require.NoError(t, err)
	assert.Equal(t, "Happy birthday, Ana!", out)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, DefaultModel, gjson.GetBytes(body, "model").String())
	assert.Equal(t, "system", gjson.GetBytes(body, "messages.0.role").String())
	assert.Equal(t, "user", gjson.GetBytes(body, "messages.1.content").String())
}

func TestCompleteWithoutKey(t *testing.T) {
	client := NewClient("http://localhost", "", "", time.Second, logger.NewNopLogger())
	_, err := client.Complete(context.Background(), &CompletionRequest{UserPrompt: "x"})
	assert.True(t, domainErrors.IsType(err, domainErrors.ServiceUnavailable))
}

func TestCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "m", time.Second, logger.NewNopLogger())
	_, err := client.Complete(context.Background(), &CompletionRequest{UserPrompt: "x"})
	assert.True(t, domainErrors.IsType(err, domainErrors.UpstreamError))
	assert.ErrorContains(t, err, "429")
}
