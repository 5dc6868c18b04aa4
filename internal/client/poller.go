package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// UnreadCount fetches the number of unread notifications of s.
func (c *Client) UnreadCount(ctx context.Context, s Session) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", s.Token, nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Poller refreshes the unread notification count on a cron schedule.
// Failures are logged and the last good count is kept.
type Poller struct {
	c        *Client
	session  Session
	spec     string
	onChange func(int)

	mu    sync.Mutex
	count int
	known bool
}

// NewPoller polls on spec, e.g. "@every 30s". onChange runs whenever the
// count differs from the previous successful poll and may be nil.
func NewPoller(c *Client, s Session, spec string, onChange func(int)) *Poller {
	return &Poller{c: c, session: s, spec: spec, onChange: onChange}
}

// Count is the last successfully fetched value.
func (p *Poller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Run polls once immediately and then on schedule until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	cr := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := cr.AddFunc(p.spec, func() { p.poll(ctx) }); err != nil {
		return fmt.Errorf("schedule poller %q: %w", p.spec, err)
	}
	p.poll(ctx)
	cr.Start()
	<-ctx.Done()
	<-cr.Stop().Done()
	return nil
}

func (p *Poller) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := p.c.UnreadCount(ctx, p.session)
	if err != nil {
		if ctx.Err() == nil {
			p.c.log.Warn("unread notification poll failed", zap.Error(err))
		}
		return
	}
	p.mu.Lock()
	changed := !p.known || n != p.count
	p.count, p.known = n, true
	p.mu.Unlock()
	if changed && p.onChange != nil {
		p.onChange(n)
	}
}
