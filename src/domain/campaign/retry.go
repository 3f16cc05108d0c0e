package campaign

import "time"

// Decision is the retry scheduler verdict for one recipient at one instant.
type Decision int

const (
	DecisionSendNow Decision = iota
	DecisionDefer
	DecisionExhausted
)

func (d Decision) String() string {
	switch d {
	case DecisionSendNow:
		return "send_now"
	case DecisionDefer:
		return "defer"
	case DecisionExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Backoff is the minimum wait after the n-th failed attempt: 2^n minutes.
func Backoff(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	return time.Duration(1<<uint(retryCount)) * time.Minute
}

// Decide is pure: it only reads the record and now.
func Decide(r *Recipient, now time.Time) Decision {
	switch {
	case r.Status == RecipientSent:
		return DecisionExhausted
	case r.Status == RecipientPending:
		return DecisionSendNow
	case r.IsPermanentlyFailed():
		return DecisionExhausted
	case r.LastRetryAt == nil:
		return DecisionSendNow
	}

	if now.Before(r.LastRetryAt.Add(Backoff(r.RetryCount))) {
		return DecisionDefer
	}
	return DecisionSendNow
}

// NextAttemptAt returns when a deferred recipient becomes eligible again.
func NextAttemptAt(r *Recipient) (time.Time, bool) {
	if !r.IsActionable() || r.Status != RecipientFailed || r.LastRetryAt == nil {
		return time.Time{}, false
	}
	return r.LastRetryAt.Add(Backoff(r.RetryCount)), true
}
