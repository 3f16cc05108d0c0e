// Package memory holds process-local implementations of the repositories.
// They back DB_DRIVER=memory and the processor tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"restaurant-crm-api/src/domain"
	domainCampaign "restaurant-crm-api/src/domain/campaign"
	domainCustomer "restaurant-crm-api/src/domain/customer"
	domainErrors "restaurant-crm-api/src/domain/errors"
	domainMedia "restaurant-crm-api/src/domain/media"
	domainMessage "restaurant-crm-api/src/domain/message"
	domainRestaurant "restaurant-crm-api/src/domain/restaurant"
	"restaurant-crm-api/src/infrastructure/repository/database/campaign"
	"restaurant-crm-api/src/infrastructure/repository/database/crm"
)

// Store is a single lock-protected dataset shared by all in-memory repositories.
type Store struct {
	mu          sync.Mutex
	seq         int
	restaurants map[int]domainRestaurant.Restaurant
	customers   map[int]domainCustomer.Customer
	engagement  map[[2]int]domainCustomer.EngagementMetrics
	campaigns   map[int]domainCampaign.Campaign
	recipients  map[int]domainCampaign.Recipient
	messages    []domainMessage.Log
	media       map[int]domainMedia.Media

	// OutcomeHook, when set, runs before an outcome is written and may fail it.
	OutcomeHook func(recipientID int) error
	// LogHook, when set, runs before a message log entry is appended and may fail it.
	LogHook func(entry *domainMessage.Log) error
}

func NewStore() *Store {
	return &Store{
		restaurants: map[int]domainRestaurant.Restaurant{},
		customers:   map[int]domainCustomer.Customer{},
		engagement:  map[[2]int]domainCustomer.EngagementMetrics{},
		campaigns:   map[int]domainCampaign.Campaign{},
		recipients:  map[int]domainCampaign.Recipient{},
		media:       map[int]domainMedia.Media{},
	}
}

func (s *Store) nextID() int {
	s.seq++
	return s.seq
}

func notFound() error {
	return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
}

// Restaurants

type RestaurantRepository struct{ s *Store }

func NewRestaurantRepository(s *Store) crm.RestaurantRepositoryInterface {
	return &RestaurantRepository{s: s}
}

func (r *RestaurantRepository) Create(_ context.Context, rest *domainRestaurant.Restaurant) (*domainRestaurant.Restaurant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.restaurants {
		if rest.OwnerID != "" && existing.OwnerID == rest.OwnerID {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.ResourceAlreadyExists)
		}
	}
	out := *rest
	out.ID = r.s.nextID()
	out.CreatedAt = time.Now().UTC()
	out.UpdatedAt = out.CreatedAt
	r.s.restaurants[out.ID] = out
	return &out, nil
}

func (r *RestaurantRepository) GetByID(_ context.Context, id int) (*domainRestaurant.Restaurant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rest, ok := r.s.restaurants[id]
	if !ok {
		return nil, notFound()
	}
	return &rest, nil
}

func (r *RestaurantRepository) GetByOwnerID(_ context.Context, ownerID string) (*domainRestaurant.Restaurant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rest := range r.s.restaurants {
		if rest.OwnerID == ownerID {
			out := rest
			return &out, nil
		}
	}
	return nil, notFound()
}

// Customers

type CustomerRepository struct{ s *Store }

func NewCustomerRepository(s *Store) crm.CustomerRepositoryInterface {
	return &CustomerRepository{s: s}
}

func (r *CustomerRepository) Create(_ context.Context, c *domainCustomer.Customer) (*domainCustomer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *c
	out.ID = r.s.nextID()
	out.CreatedAt = time.Now().UTC()
	out.UpdatedAt = out.CreatedAt
	r.s.customers[out.ID] = out
	return &out, nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id int) (*domainCustomer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, notFound()
	}
	return &c, nil
}

func (r *CustomerRepository) ListByRestaurant(_ context.Context, restaurantID int) (*[]domainCustomer.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainCustomer.Customer{}
	for _, c := range r.s.customers {
		if c.RestaurantID == restaurantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &out, nil
}

func (r *CustomerRepository) IncrementMessagesSent(_ context.Context, customerID, restaurantID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]int{customerID, restaurantID}
	m, ok := r.s.engagement[key]
	if !ok {
		m = domainCustomer.EngagementMetrics{ID: r.s.nextID(), CustomerID: customerID, RestaurantID: restaurantID}
	}
	m.MessagesSent++
	m.LastComputed = time.Now().UTC()
	r.s.engagement[key] = m
	return nil
}

func (r *CustomerRepository) GetEngagement(_ context.Context, customerID, restaurantID int) (*domainCustomer.EngagementMetrics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.engagement[[2]int{customerID, restaurantID}]
	if !ok {
		return nil, notFound()
	}
	return &m, nil
}

// Message log

type MessageLogRepository struct{ s *Store }

func NewMessageLogRepository(s *Store) crm.MessageLogRepositoryInterface {
	return &MessageLogRepository{s: s}
}

func (r *MessageLogRepository) Create(_ context.Context, entry *domainMessage.Log) (*domainMessage.Log, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.LogHook != nil {
		if err := r.s.LogHook(entry); err != nil {
			return nil, domainErrors.NewAppError(err, domainErrors.StoreWriteError)
		}
	}
	out := *entry
	out.ID = r.s.nextID()
	r.s.messages = append(r.s.messages, out)
	return &out, nil
}

func (r *MessageLogRepository) ListByCustomer(_ context.Context, restaurantID, customerID int, limit int) (*[]domainMessage.Log, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainMessage.Log{}
	for i := len(r.s.messages) - 1; i >= 0; i-- {
		m := r.s.messages[i]
		if m.RestaurantID == restaurantID && m.CustomerID == customerID {
			out = append(out, m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return &out, nil
}

func (r *MessageLogRepository) ListByCampaign(_ context.Context, campaignID int) (*[]domainMessage.Log, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainMessage.Log{}
	for _, m := range r.s.messages {
		if m.CampaignID != nil && *m.CampaignID == campaignID {
			out = append(out, m)
		}
	}
	return &out, nil
}

// Media

type MediaRepository struct{ s *Store }

func NewMediaRepository(s *Store) crm.MediaRepositoryInterface {
	return &MediaRepository{s: s}
}

func (r *MediaRepository) Create(_ context.Context, m *domainMedia.Media) (*domainMedia.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *m
	out.ID = r.s.nextID()
	out.CreatedAt = time.Now().UTC()
	r.s.media[out.ID] = out
	return &out, nil
}

func (r *MediaRepository) GetByID(_ context.Context, restaurantID, id int) (*domainMedia.Media, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.media[id]
	if !ok || m.RestaurantID != restaurantID {
		return nil, notFound()
	}
	return &m, nil
}

// Campaigns

type CampaignRepository struct{ s *Store }

func NewCampaignRepository(s *Store) campaign.CampaignRepositoryInterface {
	return &CampaignRepository{s: s}
}

func (r *CampaignRepository) CreateWithRecipients(_ context.Context, c *domainCampaign.Campaign, customerIDs []int) (*domainCampaign.Campaign, error) {
	if len(customerIDs) == 0 {
		return nil, domainErrors.NewAppErrorWithType(domainErrors.EmptyAudience)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	out := *c
	out.ID = r.s.nextID()
	out.Status = domainCampaign.StatusPending
	out.TotalRecipients = len(customerIDs)
	out.SentCount, out.FailedCount = 0, 0
	out.CreatedAt, out.UpdatedAt = now, now
	r.s.campaigns[out.ID] = out
	for _, customerID := range customerIDs {
		id := r.s.nextID()
		r.s.recipients[id] = domainCampaign.Recipient{
			ID:         id,
			CampaignID: out.ID,
			CustomerID: customerID,
			Status:     domainCampaign.RecipientPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	return &out, nil
}

func (r *CampaignRepository) GetByID(_ context.Context, id int) (*domainCampaign.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, notFound()
	}
	return &c, nil
}

func (r *CampaignRepository) GetByRestaurant(_ context.Context, restaurantID, id int) (*domainCampaign.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok || c.RestaurantID != restaurantID {
		return nil, notFound()
	}
	return &c, nil
}

func (r *CampaignRepository) ListByRestaurant(_ context.Context, restaurantID int, page domain.Pagination) (*domainCampaign.SearchResult, error) {
	page.ValidateAndSetDefaults()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := []domainCampaign.Campaign{}
	for _, c := range r.s.campaigns {
		if c.RestaurantID == restaurantID {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ScheduledFor.Equal(all[j].ScheduledFor) {
			return all[i].ScheduledFor.After(all[j].ScheduledFor)
		}
		return all[i].ID > all[j].ID
	})
	total := int64(len(all))
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.PageSize
	if end > len(all) {
		end = len(all)
	}
	data := append([]domainCampaign.Campaign{}, all[start:end]...)
	return &domainCampaign.SearchResult{
		Data:       &data,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: domain.TotalPages(total, page.PageSize),
	}, nil
}

func (r *CampaignRepository) ListDue(_ context.Context, now time.Time, limit int) (*[]domainCampaign.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domainCampaign.Campaign{}
	for _, c := range r.s.campaigns {
		if c.IsDue(now) && (c.LeaseExpiresAt == nil || c.LeaseExpiresAt.Before(now)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ScheduledFor.Before(out[j].ScheduledFor)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return &out, nil
}

func (r *CampaignRepository) Claim(_ context.Context, id int, owner string, now, leaseUntil time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok || !c.Status.IsOpen() || !c.LeaseFree(owner, now) {
		return false, nil
	}
	c.Status = domainCampaign.StatusProcessing
	c.LeaseOwner = owner
	c.LeaseExpiresAt = &leaseUntil
	c.UpdatedAt = now
	r.s.campaigns[id] = c
	return true, nil
}

func (r *CampaignRepository) RenewLease(_ context.Context, id int, owner string, leaseUntil time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.campaigns[id]; ok && c.LeaseOwner == owner {
		c.LeaseExpiresAt = &leaseUntil
		r.s.campaigns[id] = c
	}
	return nil
}

func (r *CampaignRepository) ReleaseLease(_ context.Context, id int, owner string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.campaigns[id]; ok && c.LeaseOwner == owner {
		c.LeaseOwner = ""
		c.LeaseExpiresAt = nil
		r.s.campaigns[id] = c
	}
	return nil
}

func (r *CampaignRepository) Cancel(_ context.Context, restaurantID, id int) (*domainCampaign.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok || c.RestaurantID != restaurantID {
		return nil, notFound()
	}
	if c.Status != domainCampaign.StatusPending {
		return &c, domainErrors.NewAppError(
			fmt.Errorf("campaign %d is %s and can no longer be cancelled", id, c.Status),
			domainErrors.InvalidTransition,
		)
	}
	if err := c.Cancel(); err != nil {
		return &c, err
	}
	c.UpdatedAt = time.Now().UTC()
	r.s.campaigns[id] = c
	return &c, nil
}

func (r *CampaignRepository) Complete(_ context.Context, id int, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok || c.Status != domainCampaign.StatusProcessing || c.CompletedAt != nil {
		return false, nil
	}
	if err := c.Complete(at); err != nil {
		return false, nil
	}
	c.LeaseOwner = ""
	c.LeaseExpiresAt = nil
	c.UpdatedAt = at
	r.s.campaigns[id] = c
	return true, nil
}

func (r *CampaignRepository) recipientsOf(campaignID int, keep func(*domainCampaign.Recipient) bool) []domainCampaign.Recipient {
	out := []domainCampaign.Recipient{}
	for _, rec := range r.s.recipients {
		if rec.CampaignID == campaignID && keep(&rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *CampaignRepository) ListRecipients(_ context.Context, campaignID int) (*[]domainCampaign.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.recipientsOf(campaignID, func(*domainCampaign.Recipient) bool { return true })
	return &out, nil
}

func (r *CampaignRepository) ListActionableRecipients(_ context.Context, campaignID int) (*[]domainCampaign.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.recipientsOf(campaignID, (*domainCampaign.Recipient).IsActionable)
	return &out, nil
}

func (r *CampaignRepository) CountActionableRecipients(_ context.Context, campaignID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.recipientsOf(campaignID, (*domainCampaign.Recipient).IsActionable))), nil
}

func (r *CampaignRepository) ApplyOutcome(_ context.Context, campaignID int, outcome *domainCampaign.Outcome) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	next := outcome.Recipient
	if r.s.OutcomeHook != nil {
		if err := r.s.OutcomeHook(next.ID); err != nil {
			return false, domainErrors.NewAppError(err, domainErrors.StoreWriteError)
		}
	}
	current, ok := r.s.recipients[next.ID]
	if !ok || current.Version != outcome.ExpectedVersion || current.Status == domainCampaign.RecipientSent {
		return false, nil
	}
	r.s.recipients[next.ID] = next
	if c, ok := r.s.campaigns[campaignID]; ok {
		c.SentCount += outcome.SentDelta
		c.FailedCount += outcome.FailedDelta
		r.s.campaigns[campaignID] = c
	}
	return true, nil
}
