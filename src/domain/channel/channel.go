package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// Category is the closed set of failure classes the gateway boundary can report.
type Category string

const (
	CategoryTransient      Category = "transient"
	CategoryNonRecoverable Category = "non_recoverable"
)

// Error is returned by gateway adapters. Callers branch on Category only.
type Error struct {
	Category   Category
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s channel error (status %d): %s", e.Category, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s channel error: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewTransientError(statusCode int, message string, err error) *Error {
	return &Error{Category: CategoryTransient, StatusCode: statusCode, Message: message, Err: err}
}

func NewNonRecoverableError(statusCode int, message string, err error) *Error {
	return &Error{Category: CategoryNonRecoverable, StatusCode: statusCode, Message: message, Err: err}
}

// Classify maps any send error onto a Category. Tagged errors keep their
// category and untagged ones go through ClassifyTransport.
func Classify(err error) Category {
	var chErr *Error
	if errors.As(err, &chErr) {
		return chErr.Category
	}
	return ClassifyTransport(err)
}

// ClassifyTransport is the allowlist for errors raised before any HTTP
// status exists. Timeouts, aborted contexts, refused or reset connections,
// failed dials and temporary DNS failures are transient. Anything else, such
// as an unknown host, a bad URL scheme or a TLS verification failure, is
// non-recoverable.
func ClassifyTransport(err error) Category {
	if err == nil {
		return CategoryNonRecoverable
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return CategoryTransient
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout || dnsErr.IsTemporary {
			return CategoryTransient
		}
		return CategoryNonRecoverable
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return CategoryTransient
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return CategoryTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTransient
	}
	return CategoryNonRecoverable
}

// IsTransientStatus is the HTTP status allowlist treated as retryable.
func IsTransientStatus(code int) bool {
	switch code {
	case 408, 425, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// NormalizePhone keeps digits only; a leading international "00" is dropped.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(strings.TrimSpace(phone), "00") {
		digits = strings.TrimPrefix(digits, "00")
	}
	return digits
}

// OutboundMessage is one text (optionally with media) to one phone number.
type OutboundMessage struct {
	Instance string
	Phone    string
	Text     string
	MediaURL string
}

type Receipt struct {
	MessageID  string
	StatusCode int
}

// Gateway sends one message to one number through the external messaging provider.
type Gateway interface {
	SendText(ctx context.Context, msg *OutboundMessage) (*Receipt, error)
}
