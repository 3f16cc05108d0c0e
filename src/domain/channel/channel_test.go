package channel

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"+55 (11) 98765-4321": "5511987654321",
		"0044 20 7946 0958":   "442079460958",
		"5511987654321":       "5511987654321",
		"abc":                 "",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestClassify(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "gateway", IsTemporary: true}

	assert.Equal(t, CategoryTransient, Classify(NewTransientError(503, "unavailable", nil)))
	assert.Equal(t, CategoryNonRecoverable, Classify(NewNonRecoverableError(400, "bad number", nil)))
	assert.Equal(t, CategoryTransient, Classify(fmt.Errorf("wrapped: %w", NewTransientError(0, "reset", nil))))
	assert.Equal(t, CategoryTransient, Classify(context.DeadlineExceeded))
	assert.Equal(t, CategoryTransient, Classify(dnsErr))
	assert.Equal(t, CategoryNonRecoverable, Classify(errors.New("mystery")))
	assert.Equal(t, CategoryNonRecoverable, Classify(&url.Error{Op: "Post", URL: "ftp://gateway.local", Err: errors.New("unsupported protocol scheme")}))
}

func TestClassifyTransport(t *testing.T) {
	post := func(err error) error {
		return &url.Error{Op: "Post", URL: "http://gateway.local/message/sendText/i", Err: err}
	}
	dial := func(err error) error {
		return &net.OpError{Op: "dial", Net: "tcp", Err: err}
	}

	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"client deadline", post(context.DeadlineExceeded), CategoryTransient},
		{"aborted context", post(context.Canceled), CategoryTransient},
		{"socket deadline", post(&net.OpError{Op: "read", Net: "tcp", Err: os.ErrDeadlineExceeded}), CategoryTransient},
		{"connection refused", post(dial(os.NewSyscallError("connect", syscall.ECONNREFUSED))), CategoryTransient},
		{"connection reset", post(&net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}), CategoryTransient},
		{"closed mid response", post(io.ErrUnexpectedEOF), CategoryTransient},
		{"dial failure", post(dial(errors.New("no route to host"))), CategoryTransient},
		{"dns temporary", post(dial(&net.DNSError{Err: "server misbehaving", Name: "gateway.local", IsTemporary: true})), CategoryTransient},
		{"dns timeout", post(dial(&net.DNSError{Err: "i/o timeout", Name: "gateway.local", IsTimeout: true})), CategoryTransient},
		{"unknown host", post(dial(&net.DNSError{Err: "no such host", Name: "no-such-host.invalid", IsNotFound: true})), CategoryNonRecoverable},
		{"unsupported scheme", post(errors.New(`unsupported protocol scheme "ftp"`)), CategoryNonRecoverable},
		{"bad certificate", post(x509.UnknownAuthorityError{}), CategoryNonRecoverable},
		{"nil", nil, CategoryNonRecoverable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTransport(tt.err))
		})
	}
}

func TestIsTransientStatus(t *testing.T) {
	for _, code := range []int{408, 425, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientStatus(code), code)
	}
	for _, code := range []int{400, 401, 403, 404, 422, 501} {
		assert.False(t, IsTransientStatus(code), code)
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewNonRecoverableError(400, "number not on whatsapp", nil)
	assert.Equal(t, "non_recoverable channel error (status 400): number not on whatsapp", err.Error())
	assert.Equal(t, "transient channel error: dial tcp", NewTransientError(0, "dial tcp", nil).Error())
}
