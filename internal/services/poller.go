package services

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/smartcv/searchpanel/internal/events"
)

type statusChecker interface {
	CheckStatus(ctx context.Context, sessionID string) (DisplayStatus, error)
}

type pollTicket struct {
	cancel context.CancelFunc
}

// Poller drives auto-refresh: one cancellable ticker per session, stopped
// when the status turns terminal, when the user disables refresh, when the
// session submits a new search, or at shutdown. The interval is a real
// timer, not a render-cycle side effect.
type Poller struct {
	flow     statusChecker
	interval time.Duration

	mu      sync.Mutex
	tickets map[string]*pollTicket
}

func NewPoller(flow statusChecker, interval time.Duration, bus EventBus.Bus) (*Poller, error) {

	if interval <= 0 {
		return nil, errors.New("poll interval must be greater than zero")
	}

	p := &Poller{
		flow:     flow,
		interval: interval,
		tickets:  make(map[string]*pollTicket),
	}

	if err := bus.Subscribe(events.CollectionFinishedTopic, p.onCollectionFinished); err != nil {
		return nil, err
	}

	if err := bus.Subscribe(events.SearchSubmittedTopic, p.onSearchSubmitted); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Poller) onCollectionFinished(event events.CollectionFinished) {
	p.Stop(event.SessionID)
}

// a new submission resets the session with auto-refresh off, so any ticker
// still running for the previous snapshot must go with it
func (p *Poller) onSearchSubmitted(event events.SearchSubmitted) {
	p.Stop(event.SessionID)
}

func (p *Poller) Start(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, running := p.tickets[sessionID]; running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticket := &pollTicket{cancel: cancel}
	p.tickets[sessionID] = ticket
	go p.run(ctx, sessionID, ticket)

	log.Infof("auto-refresh started for session %v", sessionID)
}

func (p *Poller) Stop(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket, running := p.tickets[sessionID]; running {
		ticket.cancel()
		delete(p.tickets, sessionID)
		log.Infof("auto-refresh stopped for session %v", sessionID)
	}
}

func (p *Poller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for sessionID, ticket := range p.tickets {
		ticket.cancel()
		delete(p.tickets, sessionID)
	}
}

// release drops the ticket only while it still owns the session's slot, so a
// dying goroutine never cancels a successor started under the same session.
func (p *Poller) release(sessionID string, ticket *pollTicket) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tickets[sessionID] == ticket {
		ticket.cancel()
		delete(p.tickets, sessionID)
	}
}

func (p *Poller) run(ctx context.Context, sessionID string, ticket *pollTicket) {

	defer p.release(sessionID, ticket)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			display, err := p.flow.CheckStatus(ctx, sessionID)
			if err != nil {
				if errors.Is(err, ErrNoActiveJob) {
					return
				}
				log.Errorf("auto-refresh poll failed for session %v: %v", sessionID, err)
				continue
			}
			if display.DisableAutoRefresh {
				return
			}
		}
	}
}
