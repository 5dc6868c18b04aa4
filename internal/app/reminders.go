package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"talent-scheduler/internal/metrics"
	"talent-scheduler/internal/notify"
)

// Reminders periodically flags confirmed interviews that start soon and
// still have no invitation.
type Reminders struct {
	app    *App
	cron   *cron.Cron
	spec   string
	window time.Duration
}

func NewReminders(a *App, spec string, window time.Duration) *Reminders {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Reminders{
		app:    a,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:   spec,
		window: window,
	}
}

// Start registers the sweep and starts the scheduler. The sweep runs under
// ctx, so cancelling it aborts an in-flight pass.
func (r *Reminders) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() {
		if _, err := r.Sweep(ctx); err != nil {
			r.app.Log.Error("invite reminder sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", r.spec, err)
	}
	r.cron.Start()
	r.app.Log.Info("invite reminders scheduled", zap.String("spec", r.spec), zap.Duration("window", r.window))
	return nil
}

// Stop waits for a running sweep to finish.
func (r *Reminders) Stop() {
	<-r.cron.Stop().Done()
}

// Sweep raises one invite_pending notification per interview and returns how
// many were created.
func (r *Reminders) Sweep(ctx context.Context) (int, error) {
	now := r.app.now()
	due, err := r.app.Store.ConfirmedWithoutInvite(ctx, now, now.Add(r.window))
	if err != nil {
		return 0, fmt.Errorf("list interviews awaiting invite: %w", err)
	}
	created := 0
	for i := range due {
		iv := &due[i]
		if iv.ScheduledStart == nil {
			continue
		}
		seen, err := r.app.Store.HasNotification(ctx, notify.TypeInvitePending, iv.ID)
		if err != nil {
			return created, fmt.Errorf("check reminder for %s: %w", iv.ID, err)
		}
		if seen {
			continue
		}
		if err := r.app.Store.CreateNotification(ctx, notify.InvitePending(iv, now)); err != nil {
			return created, fmt.Errorf("create reminder for %s: %w", iv.ID, err)
		}
		metrics.ReminderSent()
		created++
	}
	if created > 0 {
		r.app.Log.Info("invite reminders raised", zap.Int("count", created))
	}
	return created, nil
}
