package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	domainCampaign "restaurant-crm-api/src/domain/campaign"
	"restaurant-crm-api/src/domain/channel"
	logger "restaurant-crm-api/src/infrastructure/logger"
	campaignRepo "restaurant-crm-api/src/infrastructure/repository/database/campaign"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultInterval    = time.Minute
	DefaultBudget      = 50 * time.Second
	DefaultStaleAfter  = 10 * time.Minute
	DefaultConcurrency = 4
	DefaultBatchSize   = 100
)

type Options struct {
	Interval    time.Duration
	Budget      time.Duration
	StaleAfter  time.Duration
	Concurrency int
	BatchSize   int
}

func (o *Options) setDefaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = DefaultStaleAfter
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
}

// CompletionNotifier is told about every campaign this processor completes.
type CompletionNotifier interface {
	CampaignCompleted(ctx context.Context, campaign *domainCampaign.Campaign)
}

// Summary describes one processor invocation.
type Summary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Due        int       `json:"due"`
	Touched    int       `json:"touched"`
	Completed  int       `json:"completed"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Retrying   int       `json:"retrying"`
	Deferred   int       `json:"deferred"`
	Skipped    int       `json:"skipped"`
	OutOfTime  bool      `json:"out_of_time"`
}

// CampaignProcessor drives due campaigns through the channel sender. It is
// safe to run several invocations at once, in one process or many: every
// campaign is claimed with a lease and every recipient write is versioned.
type CampaignProcessor struct {
	campaigns campaignRepo.CampaignRepositoryInterface
	sender    ChannelSenderInterface
	notifier  CompletionNotifier
	options   Options
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	running   atomic.Bool
	Logger    *logger.Logger
}

func NewCampaignProcessor(
	campaigns campaignRepo.CampaignRepositoryInterface,
	sender ChannelSenderInterface,
	notifier CompletionNotifier,
	options Options,
	loggerInstance *logger.Logger,
) *CampaignProcessor {
	options.setDefaults()
	return &CampaignProcessor{
		campaigns: campaigns,
		sender:    sender,
		notifier:  notifier,
		options:   options,
		now:       func() time.Time { return time.Now().UTC() },
		sleep:     sleepContext,
		Logger:    loggerInstance,
	}
}

// SetClock replaces the time source and the delay function.
func (p *CampaignProcessor) SetClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) {
	if now != nil {
		p.now = now
	}
	if sleep != nil {
		p.sleep = sleep
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type tally struct {
	mu sync.Mutex
	s  *Summary
}

func (t *tally) add(f func(s *Summary)) {
	t.mu.Lock()
	f(t.s)
	t.mu.Unlock()
}

// Run is one invocation: claim every due campaign and work its actionable
// recipients until they are done or the wall-clock budget runs out.
func (p *CampaignProcessor) Run(ctx context.Context) (*Summary, error) {
	started := p.now()
	summary := &Summary{RunID: uuid.Must(uuid.NewV4()).String(), StartedAt: started}
	deadline := started.Add(p.options.Budget)
	log := p.Logger.With(zap.String("runID", summary.RunID))

	due, err := p.campaigns.ListDue(ctx, started, p.options.BatchSize)
	if err != nil {
		log.Error("Error listing due campaigns", zap.Error(err))
		return nil, err
	}
	summary.Due = len(*due)
	if summary.Due == 0 {
		summary.FinishedAt = p.now()
		return summary, nil
	}
	log.Info("Processing due campaigns", zap.Int("count", summary.Due), zap.Duration("budget", p.options.Budget))

	// budgetCtx only bounds waiting; an in-flight send keeps the caller's ctx.
	budgetCtx, cancel := context.WithTimeout(ctx, p.options.Budget)
	defer cancel()

	t := &tally{s: summary}
	var g errgroup.Group
	g.SetLimit(p.options.Concurrency)
	for _, c := range *due {
		if budgetCtx.Err() != nil || !p.now().Before(deadline) {
			t.add(func(s *Summary) { s.OutOfTime = true })
			break
		}
		c := c
		g.Go(func() error {
			p.processCampaign(ctx, budgetCtx, log, &c, summary.RunID, deadline, t)
			return nil
		})
	}
	_ = g.Wait()

	summary.FinishedAt = p.now()
	log.Info("Processor run finished",
		zap.Int("touched", summary.Touched),
		zap.Int("completed", summary.Completed),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("retrying", summary.Retrying),
		zap.Int("deferred", summary.Deferred),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("outOfTime", summary.OutOfTime))
	return summary, nil
}

func (p *CampaignProcessor) leaseUntil() time.Time {
	return p.now().Add(p.options.StaleAfter)
}

func (p *CampaignProcessor) processCampaign(
	ctx, budgetCtx context.Context,
	log *logger.Logger,
	c *domainCampaign.Campaign,
	runID string,
	deadline time.Time,
	t *tally,
) {
	log = log.With(zap.Int("campaignID", c.ID), zap.Int("restaurantID", c.RestaurantID))

	claimed, err := p.campaigns.Claim(ctx, c.ID, runID, p.now(), p.leaseUntil())
	if err != nil || !claimed {
		if err != nil {
			log.Error("Error claiming campaign", zap.Error(err))
		} else {
			log.Debug("Campaign claimed by another run")
		}
		t.add(func(s *Summary) { s.Skipped++ })
		return
	}
	t.add(func(s *Summary) { s.Touched++ })
	defer func() {
		if err := p.campaigns.ReleaseLease(context.WithoutCancel(ctx), c.ID, runID); err != nil {
			log.Warn("Could not release campaign lease", zap.Error(err))
		}
	}()

	recipients, err := p.campaigns.ListActionableRecipients(ctx, c.ID)
	if err != nil {
		log.Error("Error listing actionable recipients", zap.Error(err))
		return
	}

	attempted := false
	for i := range *recipients {
		r := (*recipients)[i]
		if budgetCtx.Err() != nil || !p.now().Before(deadline) {
			t.add(func(s *Summary) { s.OutOfTime = true })
			break
		}

		switch domainCampaign.Decide(&r, p.now()) {
		case domainCampaign.DecisionDefer:
			t.add(func(s *Summary) { s.Deferred++ })
			continue
		case domainCampaign.DecisionExhausted:
			continue
		}

		if attempted && c.Delay() > 0 {
			if err := p.sleep(budgetCtx, c.Delay()); err != nil {
				t.add(func(s *Summary) { s.OutOfTime = true })
				break
			}
			if !p.now().Before(deadline) {
				t.add(func(s *Summary) { s.OutOfTime = true })
				break
			}
		}

		if p.attempt(ctx, log, c, r, t) {
			attempted = true
			if err := p.campaigns.RenewLease(ctx, c.ID, runID, p.leaseUntil()); err != nil {
				log.Warn("Could not renew campaign lease", zap.Error(err))
			}
		}
	}

	p.finish(ctx, log, c, t)
}

// attempt sends to one recipient and writes the outcome. It reports whether
// the gateway was called, which is what the inter-message delay throttles.
func (p *CampaignProcessor) attempt(ctx context.Context, log *logger.Logger, c *domainCampaign.Campaign, r domainCampaign.Recipient, t *tally) bool {
	campaignID := c.ID
	result, sendErr := p.sender.Send(ctx, &SendRequest{
		RestaurantID: c.RestaurantID,
		CustomerID:   r.CustomerID,
		CampaignID:   &campaignID,
		TemplateName: c.TemplateName,
		Body:         c.Message,
		MediaURL:     c.MediaURL,
	})
	gatewayCalled := result != nil && result.Attempted

	var chErr *channel.Error
	if sendErr != nil && !errors.As(sendErr, &chErr) {
		log.Error("Could not prepare send, recipient left for next run", zap.Error(sendErr), zap.Int("recipientID", r.ID))
		t.add(func(s *Summary) { s.Skipped++ })
		return gatewayCalled
	}

	var outcome *domainCampaign.Outcome
	var err error
	at := p.now()
	if sendErr == nil {
		outcome, err = r.Succeed(at)
	} else {
		outcome, err = r.Fail(at, chErr.Category == channel.CategoryNonRecoverable, chErr.Error())
	}
	if err != nil {
		log.Warn("Recipient no longer actionable", zap.Error(err), zap.Int("recipientID", r.ID))
		t.add(func(s *Summary) { s.Skipped++ })
		return gatewayCalled
	}

	applied, err := p.campaigns.ApplyOutcome(ctx, c.ID, outcome)
	if err != nil {
		log.Error("Could not persist recipient outcome", zap.Error(err), zap.Int("recipientID", r.ID))
		t.add(func(s *Summary) { s.Skipped++ })
		return gatewayCalled
	}
	if !applied {
		log.Warn("Recipient outcome superseded by a concurrent run", zap.Int("recipientID", r.ID))
		t.add(func(s *Summary) { s.Skipped++ })
		return gatewayCalled
	}

	next := outcome.Recipient
	switch {
	case next.Status == domainCampaign.RecipientSent:
		t.add(func(s *Summary) { s.Sent++ })
	case next.Permanent:
		log.Warn("Recipient permanently failed", zap.Int("recipientID", r.ID), zap.String("reason", next.ErrorMessage))
		t.add(func(s *Summary) { s.Failed++ })
	default:
		fields := []zap.Field{zap.Int("recipientID", r.ID), zap.Int("retryCount", next.RetryCount)}
		if at, ok := domainCampaign.NextAttemptAt(&next); ok {
			fields = append(fields, zap.Time("nextAttemptAt", at))
		}
		log.Info("Recipient will be retried", fields...)
		t.add(func(s *Summary) { s.Retrying++ })
	}
	return gatewayCalled
}

func (p *CampaignProcessor) finish(ctx context.Context, log *logger.Logger, c *domainCampaign.Campaign, t *tally) {
	remaining, err := p.campaigns.CountActionableRecipients(ctx, c.ID)
	if err != nil {
		log.Error("Error counting actionable recipients", zap.Error(err))
		return
	}
	if remaining > 0 {
		log.Debug("Campaign stays processing", zap.Int64("actionable", remaining))
		return
	}

	completed, err := p.campaigns.Complete(ctx, c.ID, p.now())
	if err != nil {
		log.Error("Error completing campaign", zap.Error(err))
		return
	}
	if !completed {
		return
	}
	t.add(func(s *Summary) { s.Completed++ })

	final, err := p.campaigns.GetByID(ctx, c.ID)
	if err != nil {
		log.Warn("Could not reload completed campaign", zap.Error(err))
		return
	}
	log.Info("Campaign completed",
		zap.Int("total", final.TotalRecipients),
		zap.Int("sent", final.SentCount),
		zap.Int("failed", final.FailedCount))
	if p.notifier != nil {
		p.notifier.CampaignCompleted(ctx, final)
	}
}

// Start runs an invocation immediately, then on every tick and on every
// wake-up, until ctx is done. A tick that arrives while a run is in progress is dropped.
func (p *CampaignProcessor) Start(ctx context.Context, wake <-chan int) {
	ticker := time.NewTicker(p.options.Interval)
	defer ticker.Stop()

	p.Logger.Info("Starting campaign processor",
		zap.Duration("interval", p.options.Interval),
		zap.Int("concurrency", p.options.Concurrency))

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("Campaign processor stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		case campaignID := <-wake:
			p.Logger.Debug("Processor woken up", zap.Int("campaignID", campaignID))
			p.tick(ctx)
		}
	}
}

func (p *CampaignProcessor) tick(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.Logger.Debug("Previous run still in progress, skipping tick")
		return
	}
	defer p.running.Store(false)
	if _, err := p.Run(ctx); err != nil {
		p.Logger.Error("Processor run failed", zap.Error(err))
	}
}
