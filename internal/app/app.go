// Package app is the interview-scheduling service: the gin handlers, the
// operations behind them and their Postgres, Redis and Google adapters.
package app

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"talent-scheduler/internal/notify"
)

// App carries the service dependencies. Calendar and OAuth are nil when
// Google is not configured.
type App struct {
	Store    Store
	Auth     *Authenticator
	Events   Publisher
	Locks    Locker
	Calendar CalendarCreator
	Mailer   notify.EmailSender
	OAuth    *oauth2.Config
	Log      *zap.Logger

	FrontendURL string
	LockTTL     time.Duration
	Now         func() time.Time

	wg sync.WaitGroup
}

// New builds an App with local fallbacks. Callers replace Events, Locks,
// Calendar, Mailer and OAuth when the real backends are available.
func New(store Store, auth *Authenticator, log *zap.Logger, frontendURL string) *App {
	return &App{
		Store:       store,
		Auth:        auth,
		Events:      NopPublisher{},
		Locks:       NewLocalLocker(),
		Mailer:      notify.LogSender{Log: log},
		Log:         log,
		FrontendURL: frontendURL,
		LockTTL:     30 * time.Second,
		Now:         time.Now,
	}
}

func (a *App) now() time.Time {
	return a.Now().UTC()
}

// background runs fn after the response. Wait blocks until all of it is done.
func (a *App) background(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.Log.Error("background task panicked", zap.Any("panic", r))
			}
		}()
		fn()
	}()
}

// Wait blocks until background work has finished.
func (a *App) Wait() {
	a.wg.Wait()
}
