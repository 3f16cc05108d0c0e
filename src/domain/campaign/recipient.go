package campaign

import (
	"fmt"
	"time"

	domainErrors "restaurant-crm-api/src/domain/errors"
)

type RecipientStatus string

const (
	RecipientPending RecipientStatus = "pending"
	RecipientSent    RecipientStatus = "sent"
	RecipientFailed  RecipientStatus = "failed"
)

// MaxRetries is the number of attempts a recipient gets before it is permanently failed.
const MaxRetries = 3

func (s RecipientStatus) IsValid() bool {
	switch s {
	case RecipientPending, RecipientSent, RecipientFailed:
		return true
	}
	return false
}

// Recipient is the per-campaign delivery record of one customer.
// A failed record is retry-pending while Permanent is false and RetryCount < MaxRetries.
type Recipient struct {
	ID           int
	CampaignID   int
	CustomerID   int
	Status       RecipientStatus
	RetryCount   int
	Permanent    bool
	LastRetryAt  *time.Time
	ErrorMessage string
	SentAt       *time.Time
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r *Recipient) IsActionable() bool {
	switch r.Status {
	case RecipientPending:
		return true
	case RecipientFailed:
		return !r.Permanent && r.RetryCount < MaxRetries
	}
	return false
}

func (r *Recipient) IsPermanentlyFailed() bool {
	return r.Status == RecipientFailed && (r.Permanent || r.RetryCount >= MaxRetries)
}

// Outcome is the result of one attempt: the recipient's next state plus the
// campaign counter deltas that must be committed with it.
type Outcome struct {
	Recipient       Recipient
	ExpectedVersion int
	SentDelta       int
	FailedDelta     int
}

// Succeed records a successful attempt. Retry bookkeeping is kept as-is.
func (r Recipient) Succeed(at time.Time) (*Outcome, error) {
	if !r.IsActionable() {
		return nil, r.transitionError(RecipientSent)
	}
	next := r
	next.Status = RecipientSent
	next.SentAt = &at
	next.ErrorMessage = ""
	next.Version = r.Version + 1
	next.UpdatedAt = at
	return &Outcome{Recipient: next, ExpectedVersion: r.Version, SentDelta: 1}, nil
}

// Fail records a failed attempt. A non-recoverable failure, or one that uses up
// the last retry, makes the record permanently failed and counts against the campaign.
func (r Recipient) Fail(at time.Time, nonRecoverable bool, reason string) (*Outcome, error) {
	if !r.IsActionable() {
		return nil, r.transitionError(RecipientFailed)
	}
	next := r
	next.Status = RecipientFailed
	next.RetryCount = r.RetryCount + 1
	next.LastRetryAt = &at
	next.Permanent = nonRecoverable || next.RetryCount >= MaxRetries
	next.Version = r.Version + 1
	next.UpdatedAt = at

	next.ErrorMessage = fmt.Sprintf("[attempt %d/%d] %s", next.RetryCount, MaxRetries, reason)
	failedDelta := 0
	if next.Permanent {
		next.ErrorMessage += " (permanent)"
		failedDelta = 1
	}
	outcome := &Outcome{Recipient: next, ExpectedVersion: r.Version, FailedDelta: failedDelta}
	return outcome, nil
}

func (r Recipient) transitionError(to RecipientStatus) error {
	return domainErrors.NewAppError(
		fmt.Errorf("recipient %d cannot move from %s (retries %d) to %s", r.ID, r.Status, r.RetryCount, to),
		domainErrors.InvalidTransition,
	)
}
