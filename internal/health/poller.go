// Package health периодически опрашивает /api/health сервиса детекции
// и хранит последний статус соединения.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway"
)

const DefaultInterval = 30 * time.Second

type Status string

const (
	StatusChecking Status = "checking"
	StatusOnline   Status = "online"
	StatusOffline  Status = "offline"
)

func (s Status) String() string {
	return string(s)
}

type Snapshot struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checkedAt,omitempty"`
	Checks    int       `json:"checks"`
}

// Poller один на процесс. Start опрашивает сразу и затем каждые interval,
// Stop отменяет опрос и дожидается выхода горутины.
type Poller struct {
	gateway  gateway.Gateway
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.RWMutex
	snapshot Snapshot
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewPoller(gw gateway.Gateway, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		gateway:  gw,
		interval: interval,
		logger:   logger,
		snapshot: Snapshot{Status: StatusChecking},
	}
}

func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.logger.Info().Dur("interval", p.interval).Msg("Starting health poller")

	go p.run(ctx, done)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check один опрос вне расписания
func (p *Poller) Check(ctx context.Context) Snapshot {
	res := p.gateway.Health(ctx)
	if ctx.Err() != nil {
		return p.Snapshot()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.snapshot.Status
	p.snapshot.CheckedAt = time.Now().UTC()
	p.snapshot.Checks++

	if data, ok := res.Unwrap(); ok {
		p.snapshot.Status = StatusOnline
		p.snapshot.Message = data.Message
	} else {
		p.snapshot.Status = StatusOffline
		p.snapshot.Message = res.Error
	}

	if prev != p.snapshot.Status {
		p.logger.Info().
			Str("from", prev.String()).
			Str("to", p.snapshot.Status.String()).
			Msg("Detection service status changed")
	}

	return p.snapshot
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
	p.logger.Info().Msg("Health poller stopped")
}
