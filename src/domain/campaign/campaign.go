package campaign

import (
	"fmt"
	"time"

	domainErrors "restaurant-crm-api/src/domain/errors"
)

// Status is the campaign lifecycle: pending -> processing -> completed, or pending -> cancelled.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// DefaultDelaySeconds is applied when a campaign is created without an explicit delay.
const DefaultDelaySeconds = 5

var campaignTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusProcessing, StatusCompleted},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the processor may still pick the campaign up.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusProcessing
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range campaignTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next if the move is allowed. processing -> processing is an accepted no-op.
func (s Status) TransitionTo(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, domainErrors.NewAppError(
			fmt.Errorf("campaign cannot move from %s to %s", s, next),
			domainErrors.InvalidTransition,
		)
	}
	return next, nil
}

type Campaign struct {
	ID              int
	RestaurantID    int
	CreatedBy       string
	Message         string
	MediaURL        string
	TemplateName    string
	ScheduledFor    time.Time
	DelaySeconds    int
	TotalRecipients int
	SentCount       int
	FailedCount     int
	Status          Status
	CompletedAt     *time.Time
	LeaseOwner      string
	LeaseExpiresAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c *Campaign) Delay() time.Duration {
	if c.DelaySeconds <= 0 {
		return 0
	}
	return time.Duration(c.DelaySeconds) * time.Second
}

// IsDue reports whether the processor should consider the campaign at now.
func (c *Campaign) IsDue(now time.Time) bool {
	return c.Status.IsOpen() && !c.ScheduledFor.After(now)
}

// LeaseFree reports whether owner may claim the campaign at now.
func (c *Campaign) LeaseFree(owner string, now time.Time) bool {
	if c.LeaseExpiresAt == nil || c.LeaseOwner == owner {
		return true
	}
	return c.LeaseExpiresAt.Before(now)
}

func (c *Campaign) Cancel() error {
	next, err := c.Status.TransitionTo(StatusCancelled)
	if err != nil {
		return err
	}
	c.Status = next
	return nil
}

// Complete moves a processing campaign to completed and stamps completed_at once.
func (c *Campaign) Complete(at time.Time) error {
	next, err := c.Status.TransitionTo(StatusCompleted)
	if err != nil {
		return err
	}
	c.Status = next
	if c.CompletedAt == nil {
		c.CompletedAt = &at
	}
	return nil
}

// Pending returns the number of recipients that reached neither sent nor permanent failure.
func (c *Campaign) Pending() int {
	rest := c.TotalRecipients - c.SentCount - c.FailedCount
	if rest < 0 {
		return 0
	}
	return rest
}

type SearchResult struct {
	Data       *[]Campaign
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}
