package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant-crm-api/src/domain"
	domainCampaign "restaurant-crm-api/src/domain/campaign"
	domainCustomer "restaurant-crm-api/src/domain/customer"
	domainErrors "restaurant-crm-api/src/domain/errors"
	logger "restaurant-crm-api/src/infrastructure/logger"
	campaignRepo "restaurant-crm-api/src/infrastructure/repository/database/campaign"
	"restaurant-crm-api/src/infrastructure/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWaker struct {
	published   []int
	publishFunc func(int) error
}

func (m *mockWaker) Publish(_ context.Context, id int) error {
	m.published = append(m.published, id)
	if m.publishFunc != nil {
		return m.publishFunc(id)
	}
	return nil
}

var testNow = time.Date(2026, 3, 1, 18, 30, 20, 0, time.UTC)

type harness struct {
	useCase   *CampaignUseCase
	campaigns campaignRepo.CampaignRepositoryInterface
	waker     *mockWaker
	customers []*domainCustomer.Customer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	customers := memory.NewCustomerRepository(store)
	campaigns := memory.NewCampaignRepository(store)
	waker := &mockWaker{}

	recent := testNow.Add(-5 * 24 * time.Hour)
	old := testNow.Add(-60 * 24 * time.Hour)
	h := &harness{campaigns: campaigns, waker: waker}
	for _, c := range []domainCustomer.Customer{
		{RestaurantID: 1, Name: "Ana", Phone: "5511", LastOrder: &recent},
		{RestaurantID: 1, Name: "Bea", Phone: "5512", LastOrder: &recent},
		{RestaurantID: 1, Name: "Caio", Phone: "5513", LastOrder: &old},
		{RestaurantID: 2, Name: "Other", Phone: "5514"},
	} {
		c := c
		created, err := customers.Create(context.Background(), &c)
		require.NoError(t, err)
		h.customers = append(h.customers, created)
	}

	h.useCase = NewCampaignUseCase(campaigns, customers, waker, logger.NewNopLogger())
	h.useCase.now = func() time.Time { return testNow }
	return h
}

func TestResolveSchedule(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateCampaignRequest
		want    time.Time
		wantErr bool
	}{
		{"date and time in UTC", CreateCampaignRequest{ScheduledDate: "2026-03-02", ScheduledTime: "09:00"}, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), false},
		{"with seconds", CreateCampaignRequest{ScheduledDate: "2026-03-02", ScheduledTime: "09:00:30"}, time.Date(2026, 3, 2, 9, 0, 30, 0, time.UTC), false},
		{"timezone", CreateCampaignRequest{ScheduledDate: "2026-03-02", ScheduledTime: "09:00", Timezone: "America/Sao_Paulo"}, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), false},
		{"rfc3339", CreateCampaignRequest{ScheduledAt: "2026-03-02T09:00:00+01:00"}, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), false},
		{"current minute is accepted", CreateCampaignRequest{ScheduledDate: "2026-03-01", ScheduledTime: "18:30"}, time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC), false},
		{"past", CreateCampaignRequest{ScheduledDate: "2026-03-01", ScheduledTime: "18:29"}, time.Time{}, true},
		{"missing time", CreateCampaignRequest{ScheduledDate: "2026-03-02"}, time.Time{}, true},
		{"malformed date", CreateCampaignRequest{ScheduledDate: "02/03/2026", ScheduledTime: "09:00"}, time.Time{}, true},
		{"bad timezone", CreateCampaignRequest{ScheduledDate: "2026-03-02", ScheduledTime: "09:00", Timezone: "Mars/Olympus"}, time.Time{}, true},
		{"bad rfc3339", CreateCampaignRequest{ScheduledAt: "tomorrow"}, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSchedule(&tt.req, testNow)
			if tt.wantErr {
				assert.True(t, domainErrors.IsType(err, domainErrors.InvalidSchedule), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestCreateSnapshotsAudience(t *testing.T) {
	h := newHarness(t)
	c, err := h.useCase.Create(context.Background(), &CreateCampaignRequest{
		RestaurantID:  1,
		Message:       "Happy hour",
		ScheduledDate: "2026-03-02",
		ScheduledTime: "12:00",
		Audience:      domainCampaign.Audience{Filter: domainCampaign.FilterRecentlyActive},
	})
	require.NoError(t, err)
	assert.Equal(t, domainCampaign.StatusPending, c.Status)
	assert.Equal(t, 2, c.TotalRecipients)
	assert.Equal(t, domainCampaign.DefaultDelaySeconds, c.DelaySeconds)
	assert.Empty(t, h.waker.published, "future campaigns do not wake the worker")

	recipients, err := h.useCase.Recipients(context.Background(), 1, c.ID)
	require.NoError(t, err)
	require.Len(t, *recipients, 2)
	for _, r := range *recipients {
		assert.Equal(t, domainCampaign.RecipientPending, r.Status)
	}
}

func TestCreateDueNowWakesWorker(t *testing.T) {
	h := newHarness(t)
	zero := 0
	h.waker.publishFunc = func(int) error { return errors.New("redis down") }
	c, err := h.useCase.Create(context.Background(), &CreateCampaignRequest{
		RestaurantID: 1,
		Message:      "Now",
		ScheduledAt:  "2026-03-01T18:30:00Z",
		DelaySeconds: &zero,
		Audience:     domainCampaign.Audience{Filter: domainCampaign.FilterAll},
	})
	require.NoError(t, err, "wake-up failures do not fail creation")
	assert.Equal(t, []int{c.ID}, h.waker.published)
	assert.Zero(t, c.DelaySeconds)
	assert.Equal(t, 3, c.TotalRecipients)
}

func TestCreateRejectsEmptyAudience(t *testing.T) {
	h := newHarness(t)
	_, err := h.useCase.Create(context.Background(), &CreateCampaignRequest{
		RestaurantID:  2,
		Message:       "Come back",
		ScheduledDate: "2026-03-02",
		ScheduledTime: "12:00",
		Audience:      domainCampaign.Audience{Filter: domainCampaign.FilterRecentlyActive},
	})
	assert.True(t, domainErrors.IsType(err, domainErrors.EmptyAudience))

	list, err := h.useCase.List(context.Background(), 2, domain.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, list.Total, "nothing persisted")
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	negative := -1
	tests := []struct {
		name    string
		req     CreateCampaignRequest
		errType string
	}{
		{"empty message", CreateCampaignRequest{RestaurantID: 1, Message: "  ", ScheduledAt: "2026-03-02T00:00:00Z"}, domainErrors.ValidationError},
		{"negative delay", CreateCampaignRequest{RestaurantID: 1, Message: "x", DelaySeconds: &negative, ScheduledAt: "2026-03-02T00:00:00Z"}, domainErrors.ValidationError},
		{"no schedule", CreateCampaignRequest{RestaurantID: 1, Message: "x", Audience: domainCampaign.Audience{Filter: domainCampaign.FilterAll}}, domainErrors.InvalidSchedule},
		{"unknown filter", CreateCampaignRequest{RestaurantID: 1, Message: "x", ScheduledAt: "2026-03-02T00:00:00Z", Audience: domainCampaign.Audience{Filter: "vip"}}, domainErrors.ValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.useCase.Create(context.Background(), &tt.req)
			assert.True(t, domainErrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestExplicitAudienceIgnoresForeignCustomers(t *testing.T) {
	h := newHarness(t)
	c, err := h.useCase.Create(context.Background(), &CreateCampaignRequest{
		RestaurantID: 1,
		Message:      "VIP",
		ScheduledAt:  "2026-03-02T00:00:00Z",
		Audience: domainCampaign.Audience{
			Filter:      domainCampaign.FilterExplicit,
			CustomerIDs: []int{h.customers[0].ID, h.customers[3].ID, h.customers[0].ID},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalRecipients)
}

func TestCancelAndTenantScoping(t *testing.T) {
	h := newHarness(t)
	c, err := h.useCase.Create(context.Background(), &CreateCampaignRequest{
		RestaurantID: 1,
		Message:      "x",
		ScheduledAt:  "2026-03-02T00:00:00Z",
		Audience:     domainCampaign.Audience{Filter: domainCampaign.FilterAll},
	})
	require.NoError(t, err)

	_, err = h.useCase.Get(context.Background(), 2, c.ID)
	assert.True(t, domainErrors.IsType(err, domainErrors.NotFound))
	_, err = h.useCase.Recipients(context.Background(), 2, c.ID)
	assert.True(t, domainErrors.IsType(err, domainErrors.NotFound))

	cancelled, err := h.useCase.Cancel(context.Background(), 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domainCampaign.StatusCancelled, cancelled.Status)

	_, err = h.useCase.Cancel(context.Background(), 1, c.ID)
	assert.True(t, domainErrors.IsType(err, domainErrors.InvalidTransition))
}
