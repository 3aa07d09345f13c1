package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	redisclient "github.com/priyanshsolanki/medilink-assignment3/internal/redis"
)

// Policy decides how many delivery attempts a notification gets and how far
// apart they are. The shipped configuration is a single attempt with no
// retry, so a failure is terminal; that behavior is config, not structure.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// SingleAttempt is the default fire-and-forget policy.
func SingleAttempt() Policy {
	return Policy{MaxAttempts: 1}
}

// Locker serializes poll ticks across worker processes. Optional; without
// one only the in-process single-flight guard applies.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

const tickLockKey = "lock:notify:tick"

const tickTimeout = 20 * time.Second

// Dispatcher is the periodic poller that turns due notification intents
// into delivery attempts. It has an explicit Start/Stop lifecycle and a
// single-flight guard: a tick that is still running when the next interval
// fires makes the new tick a no-op.
type Dispatcher struct {
	repo     Repository
	senders  SenderRegistry
	policy   Policy
	interval time.Duration
	locker   Locker
	log      zerolog.Logger
	now      func() time.Time

	busy      atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewDispatcher(repo Repository, senders SenderRegistry, policy Policy, interval time.Duration, locker Locker, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		senders:  senders,
		policy:   policy,
		interval: interval,
		locker:   locker,
		log:      log,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the poll loop. The first tick runs immediately.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		go d.loop()
	})
}

// Stop signals the loop and waits for the in-flight tick, if any, to end.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		<-d.doneCh
	})
}

func (d *Dispatcher) loop() {
	defer close(d.doneCh)

	d.tick()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Dispatcher) tick() {
	if !d.busy.CompareAndSwap(false, true) {
		d.log.Warn().Msg("previous dispatch tick still running, skipping")
		return
	}
	defer d.busy.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	run := d.RunOnce
	if d.locker != nil {
		run = func(ctx context.Context) error {
			return d.locker.WithLock(ctx, tickLockKey, d.RunOnce)
		}
	}

	start := d.now()
	if err := run(ctx); err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			d.log.Debug().Msg("another worker holds the tick lock")
			return
		}
		d.log.Error().Err(err).Msg("dispatch tick failed")
		return
	}
	d.log.Debug().Dur("took", time.Since(start)).Msg("dispatch tick complete")
}

// RunOnce processes every due pending notification. Items are independent:
// a delivery failure is recorded on its own row and never aborts the rest
// of the batch.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	due, err := d.repo.FindDue(ctx, d.now())
	if err != nil {
		return fmt.Errorf("find due notifications: %w", err)
	}

	for i := range due {
		d.deliver(ctx, &due[i])
	}

	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, n *Notification) {
	sender, err := d.senders.senderFor(n.DeliveryMethod)
	if err != nil {
		d.log.Error().Err(err).Str("notification_id", n.ID.String()).Msg("undeliverable notification")
		d.settleFailure(ctx, n)
		return
	}

	if err := sender.Send(ctx, n); err != nil {
		d.log.Warn().Err(err).
			Str("notification_id", n.ID.String()).
			Int("attempt", n.AttemptCount+1).
			Msg("notification delivery failed")
		d.settleFailure(ctx, n)
		return
	}

	if err := d.repo.MarkSent(ctx, n.ID, d.now()); err != nil {
		// Row may already be settled by a competing worker.
		d.log.Error().Err(err).Str("notification_id", n.ID.String()).Msg("mark sent failed")
	}
}

func (d *Dispatcher) settleFailure(ctx context.Context, n *Notification) {
	attempt := n.AttemptCount + 1
	if attempt < d.policy.MaxAttempts && d.policy.Backoff != nil {
		nextAt := d.now().Add(d.policy.Backoff(attempt))
		if err := d.repo.MarkRetry(ctx, n.ID, nextAt); err != nil {
			d.log.Error().Err(err).Str("notification_id", n.ID.String()).Msg("mark retry failed")
		}
		return
	}

	if err := d.repo.MarkFailed(ctx, n.ID); err != nil {
		d.log.Error().Err(err).Str("notification_id", n.ID.String()).Msg("mark failed failed")
	}
}
