package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-crm-api/src/domain"
	domainCampaign "restaurant-crm-api/src/domain/campaign"
	domainCustomer "restaurant-crm-api/src/domain/customer"
	domainErrors "restaurant-crm-api/src/domain/errors"
	logger "restaurant-crm-api/src/infrastructure/logger"
	campaignRepo "restaurant-crm-api/src/infrastructure/repository/database/campaign"

	"go.uber.org/zap"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	timeLayoutSecs = "15:04:05"
)

// CreateCampaignRequest carries an operator's campaign draft. The schedule is
// either ScheduledAt (RFC3339) or ScheduledDate plus ScheduledTime in Timezone.
type CreateCampaignRequest struct {
	RestaurantID  int
	CreatedBy     string
	Message       string
	MediaURL      string
	TemplateName  string
	ScheduledDate string
	ScheduledTime string
	ScheduledAt   string
	Timezone      string
	DelaySeconds  *int
	Audience      domainCampaign.Audience
}

// Waker is told about campaigns that are already due when they are created.
type Waker interface {
	Publish(ctx context.Context, campaignID int) error
}

type ICampaignUseCase interface {
	Create(ctx context.Context, req *CreateCampaignRequest) (*domainCampaign.Campaign, error)
	List(ctx context.Context, restaurantID int, page domain.Pagination) (*domainCampaign.SearchResult, error)
	Get(ctx context.Context, restaurantID, id int) (*domainCampaign.Campaign, error)
	Recipients(ctx context.Context, restaurantID, id int) (*[]domainCampaign.Recipient, error)
	Cancel(ctx context.Context, restaurantID, id int) (*domainCampaign.Campaign, error)
}

type CampaignUseCase struct {
	campaignRepository campaignRepo.CampaignRepositoryInterface
	customerService    domainCustomer.ICustomerService
	waker              Waker
	now                func() time.Time
	Logger             *logger.Logger
}

func NewCampaignUseCase(
	campaignRepository campaignRepo.CampaignRepositoryInterface,
	customerService domainCustomer.ICustomerService,
	waker Waker,
	loggerInstance *logger.Logger,
) *CampaignUseCase {
	return &CampaignUseCase{
		campaignRepository: campaignRepository,
		customerService:    customerService,
		waker:              waker,
		now:                func() time.Time { return time.Now().UTC() },
		Logger:             loggerInstance,
	}
}

// ResolveSchedule turns the request's schedule fields into an instant. The
// result may not lie before the start of the current minute.
func ResolveSchedule(req *CreateCampaignRequest, now time.Time) (time.Time, error) {
	invalid := func(format string, args ...interface{}) (time.Time, error) {
		return time.Time{}, domainErrors.NewAppError(fmt.Errorf(format, args...), domainErrors.InvalidSchedule)
	}

	var at time.Time
	switch {
	case strings.TrimSpace(req.ScheduledAt) != "":
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
		if err != nil {
			return invalid("scheduled_at %q is not an RFC3339 timestamp", req.ScheduledAt)
		}
		at = parsed
	case strings.TrimSpace(req.ScheduledDate) != "" && strings.TrimSpace(req.ScheduledTime) != "":
		loc := time.UTC
		if req.Timezone != "" {
			l, err := time.LoadLocation(req.Timezone)
			if err != nil {
				return invalid("unknown timezone %q", req.Timezone)
			}
			loc = l
		}
		clock := strings.TrimSpace(req.ScheduledTime)
		layout := dateLayout + " " + timeLayout
		if strings.Count(clock, ":") == 2 {
			layout = dateLayout + " " + timeLayoutSecs
		}
		parsed, err := time.ParseInLocation(layout, strings.TrimSpace(req.ScheduledDate)+" "+clock, loc)
		if err != nil {
			return invalid("scheduled date/time %q %q is malformed", req.ScheduledDate, req.ScheduledTime)
		}
		at = parsed
	default:
		return invalid("scheduled date and time are required")
	}

	if at.Before(now.Truncate(time.Minute)) {
		return invalid("scheduled time %s is in the past", at.UTC().Format(time.RFC3339))
	}
	return at.UTC(), nil
}

func (u *CampaignUseCase) Create(ctx context.Context, req *CreateCampaignRequest) (*domainCampaign.Campaign, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, domainErrors.NewAppError(fmt.Errorf("message is required"), domainErrors.ValidationError)
	}
	delay := domainCampaign.DefaultDelaySeconds
	if req.DelaySeconds != nil {
		if *req.DelaySeconds < 0 {
			return nil, domainErrors.NewAppError(fmt.Errorf("delay_seconds must be >= 0"), domainErrors.ValidationError)
		}
		delay = *req.DelaySeconds
	}

	now := u.now()
	scheduledFor, err := ResolveSchedule(req, now)
	if err != nil {
		u.Logger.Warn("Rejected campaign schedule", zap.Error(err), zap.Int("restaurantID", req.RestaurantID))
		return nil, err
	}

	customers, err := u.customerService.ListByRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	selected, err := domainCampaign.SelectRecipients(*customers, req.Audience, now)
	if err != nil {
		u.Logger.Warn("Rejected campaign audience", zap.Error(err),
			zap.Int("restaurantID", req.RestaurantID), zap.String("filter", string(req.Audience.Filter)))
		return nil, err
	}
	ids := make([]int, len(selected))
	for i, c := range selected {
		ids[i] = c.ID
	}

	created, err := u.campaignRepository.CreateWithRecipients(ctx, &domainCampaign.Campaign{
		RestaurantID: req.RestaurantID,
		CreatedBy:    req.CreatedBy,
		Message:      req.Message,
		MediaURL:     req.MediaURL,
		TemplateName: req.TemplateName,
		ScheduledFor: scheduledFor,
		DelaySeconds: delay,
		Status:       domainCampaign.StatusPending,
	}, ids)
	if err != nil {
		return nil, err
	}

	if u.waker != nil && created.IsDue(now) {
		if err := u.waker.Publish(ctx, created.ID); err != nil {
			u.Logger.Warn("Could not publish campaign wake-up", zap.Error(err), zap.Int("campaignID", created.ID))
		}
	}
	return created, nil
}

func (u *CampaignUseCase) List(ctx context.Context, restaurantID int, page domain.Pagination) (*domainCampaign.SearchResult, error) {
	return u.campaignRepository.ListByRestaurant(ctx, restaurantID, page)
}

func (u *CampaignUseCase) Get(ctx context.Context, restaurantID, id int) (*domainCampaign.Campaign, error) {
	return u.campaignRepository.GetByRestaurant(ctx, restaurantID, id)
}

func (u *CampaignUseCase) Recipients(ctx context.Context, restaurantID, id int) (*[]domainCampaign.Recipient, error) {
	if _, err := u.campaignRepository.GetByRestaurant(ctx, restaurantID, id); err != nil {
		return nil, err
	}
	return u.campaignRepository.ListRecipients(ctx, id)
}

func (u *CampaignUseCase) Cancel(ctx context.Context, restaurantID, id int) (*domainCampaign.Campaign, error) {
	c, err := u.campaignRepository.Cancel(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}
