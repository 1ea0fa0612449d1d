package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/schedule"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Source loads the classifier input and resolves recipients.
type Source interface {
	ListAllObligations(ctx context.Context) ([]models.Obligation, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Notifier delivers one reminder to one user.
type Notifier interface {
	SendPaymentReminder(ctx context.Context, to, username string, p models.UpcomingPayment) error
}

// Clock returns the current time.
type Clock func() time.Time

// Poller periodically reloads every obligation, keeps the latest snapshot per user
// and sends each due or overdue payment reminder once.
type Poller struct {
	src      Source
	notifier Notifier
	log      *logrus.Logger
	now      Clock
	spec     string
	window   int
	timeout  time.Duration

	cron *cron.Cron
	wg   sync.WaitGroup

	mu        sync.RWMutex
	issued    uint64
	stored    uint64
	snapshot  map[int64][]models.Obligation
	refreshed time.Time

	sentMu sync.Mutex
	sent   map[string]struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(p *Poller) { p.now = c } }

// WithNotifier enables reminder delivery.
func WithNotifier(n Notifier) Option { return func(p *Poller) { p.notifier = n } }

// WithTimeout bounds a single refresh.
func WithTimeout(d time.Duration) Option { return func(p *Poller) { p.timeout = d } }

// NewPoller builds a poller running on the cron spec (for example "@every 5m").
// windowDays is how far ahead upcoming payments are reminded.
func NewPoller(src Source, log *logrus.Logger, spec string, windowDays int, opts ...Option) *Poller {
	p := &Poller{
		src:     src,
		log:     log,
		now:     time.Now,
		spec:    spec,
		window:  windowDays,
		timeout: time.Minute,
		sent:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start refreshes once and then schedules refreshes on the cron spec.
func (p *Poller) Start() error {
	logger := cron.VerbosePrintfLogger(p.log)
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(p.spec, p.tick); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", p.spec, err)
	}
	p.cron = c
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.tick()
	}()
	c.Start()
	p.log.Infof("Reminder poller started (%s, window %d days)", p.spec, p.window)
	return nil
}

// Stop halts scheduling and waits for a running refresh to finish or ctx to expire.
func (p *Poller) Stop(ctx context.Context) {
	if p.cron == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		<-p.cron.Stop().Done()
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	p.log.Info("Reminder poller stopped")
}

func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.Refresh(ctx); err != nil {
		p.log.Errorf("Reminder refresh failed: %v", err)
	}
}

// Refresh runs one polling cycle. A failure leaves the previous snapshot in place.
func (p *Poller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.issued++
	gen := p.issued
	p.mu.Unlock()

	obligations, err := p.src.ListAllObligations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load obligations: %w", err)
	}

	byUser := make(map[int64][]models.Obligation)
	for _, o := range obligations {
		byUser[o.UserID] = append(byUser[o.UserID], o)
	}

	now := p.now()
	p.mu.Lock()
	if gen < p.stored {
		// a newer refresh already landed
		p.mu.Unlock()
		return nil
	}
	p.stored = gen
	p.snapshot = byUser
	p.refreshed = now
	p.mu.Unlock()

	p.log.Debugf("Reminder snapshot refreshed: %d obligations, %d users", len(obligations), len(byUser))
	if p.notifier != nil {
		p.notify(ctx, obligations, date.FromTime(now))
	}
	return nil
}

// Snapshot returns the obligations of userID from the latest successful refresh.
func (p *Poller) Snapshot(userID int64) ([]models.Obligation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return nil, false
	}
	list := p.snapshot[userID]
	out := make([]models.Obligation, len(list))
	for i, o := range list {
		out[i] = o.Clone()
	}
	return out, true
}

// RefreshedAt returns the time of the latest stored snapshot.
func (p *Poller) RefreshedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.refreshed
}

func sentKey(u models.UpcomingPayment) string {
	kind := "due"
	if u.Overdue() {
		kind = "overdue"
	}
	return fmt.Sprintf("%d:%d:%s:%s", u.ObligationID, u.N, u.Date, kind)
}

// due picks what to remind about: urgent upcoming payments and overdue ones.
func due(obligations []models.Obligation, today date.Date, window int) []models.UpcomingPayment {
	var out []models.UpcomingPayment
	for _, u := range schedule.GetUpcoming(obligations, today, window) {
		if u.IsUrgent {
			out = append(out, u)
		}
	}
	return append(out, schedule.Overdue(obligations, today)...)
}

func (p *Poller) notify(ctx context.Context, obligations []models.Obligation, today date.Date) {
	p.sentMu.Lock()
	defer p.sentMu.Unlock()

	current := make(map[string]struct{})
	users := make(map[int64]*models.User)
	for _, u := range due(obligations, today, p.window) {
		key := sentKey(u)
		current[key] = struct{}{}
		if _, done := p.sent[key]; done {
			continue
		}

		user, ok := users[u.UserID]
		if !ok {
			var err error
			user, err = p.src.FindUserByID(ctx, u.UserID)
			if err != nil {
				p.log.WithField("user_id", u.UserID).Warnf("Cannot resolve reminder recipient: %v", err)
			}
			users[u.UserID] = user
		}
		if user == nil {
			continue
		}

		if err := p.notifier.SendPaymentReminder(ctx, user.Email, user.Username, u); err != nil {
			p.log.WithFields(logrus.Fields{"obligation_id": u.ObligationID, "n": u.N}).
				Warnf("Reminder not delivered, will retry: %v", err)
			continue
		}
		p.sent[key] = struct{}{}
	}

	// paid or rescheduled payments drop out of the due set
	for key := range p.sent {
		if _, ok := current[key]; !ok {
			delete(p.sent, key)
		}
	}
}
