package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"mindbuddy/internal/activity"
)

// DefaultInterval is the demo cadence of simulated notifications.
const DefaultInterval = 30 * time.Second

var notificationMessages = []string{
	"Time for a quick check-in! How are you feeling? 💙",
	"Remember to take a deep breath and be kind to yourself ✨",
	"You're doing great today! Keep it up 🌟",
	"Consider taking a short break to relax 🌙",
}

// Target is where simulated notifications land; the session implements it.
type Target interface {
	NotificationsEnabled() bool
	LogActivity(message string, ts time.Time) activity.Entry
}

type Rand interface {
	Intn(n int) int
}

// Simulator appends a random notification to the activity feed on every
// tick while notifications are enabled.
type Simulator struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration
	target   Target
	rnd      Rand
	now      func() time.Time
	deliver  func(ctx context.Context, e activity.Entry)
	log      *zap.SugaredLogger
}

type Option func(*Simulator)

// WithDelivery registers a hook called with every appended notification.
func WithDelivery(f func(ctx context.Context, e activity.Entry)) Option {
	return func(s *Simulator) { s.deliver = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Simulator) { s.cron = cron.New(cron.WithLocation(loc)) }
}

func New(target Target, interval time.Duration, rnd Rand, log *zap.SugaredLogger, opts ...Option) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Simulator{
		cron:     cron.New(cron.WithLocation(time.Local)),
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
		target:   target,
		rnd:      rnd,
		now:      time.Now,
		log:      log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tick fires one simulated notification. It reports whether anything was
// appended; nothing is when notifications are disabled at fire time.
func (s *Simulator) Tick() (activity.Entry, bool) {
	if !s.target.NotificationsEnabled() {
		return activity.Entry{}, false
	}
	msg := notificationMessages[s.rnd.Intn(len(notificationMessages))]
	e := s.target.LogActivity(msg, s.now())
	if s.deliver != nil {
		s.deliver(s.ctx, e)
	}
	return e, true
}

// Start registers the recurring job and starts the cron runner.
func (s *Simulator) Start() error {
	schedule := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(schedule, func() {
		if e, ok := s.Tick(); ok {
			s.log.Debugf("🔔 simulated notification: %q", e.Message)
		}
	})
	if err != nil {
		return fmt.Errorf("register notification job: %w", err)
	}
	s.cron.Start()
	s.log.Infof("📅 Notification simulator started, every %s", s.interval)
	return nil
}

// Stop waits for a running tick to finish and stops further ticks.
func (s *Simulator) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Infof("📅 Notification simulator stopped")
}

// IsRunning reports whether the job has been registered.
func (s *Simulator) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}

// Messages returns a copy of the notification pool.
func Messages() []string {
	return append([]string(nil), notificationMessages...)
}
