package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/craftbridge/craftbridge/internal/metrics"
)

const (
	// pollErrorThreshold is the number of consecutive getUpdates failures
	// after which the poller backs off instead of hammering the API.
	pollErrorThreshold = 5
	pollErrorPause     = 30 * time.Second
)

// Poller runs the getUpdates long-poll loop and feeds fetched updates into
// the queue in arrival order. It is the queue's sole producer; when the
// loop exits it closes the queue so the dispatcher can drain and stop.
type Poller struct {
	client  *Client
	queue   *updateQueue
	logger  *slog.Logger
	timeout int
	metrics *metrics.Bot

	offset int64

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller reading from client into queue. timeout is the
// long-poll window in seconds.
func NewPoller(client *Client, queue *updateQueue, timeout int, m *metrics.Bot, logger *slog.Logger) *Poller {
	return &Poller{
		client:  client,
		queue:   queue,
		logger:  logger,
		timeout: timeout,
		metrics: m,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the polling loop.
func (p *Poller) Start() {
	go p.loop()
}

// Stop signals the loop to exit and waits for it to finish. Safe to call
// more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	<-p.done
}

func (p *Poller) loop() {
	defer close(p.done)
	defer p.queue.Close()

	ctx, cancel := p.stopContext()
	defer cancel()

	consecutiveErrors := 0

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		updates, err := p.client.GetUpdates(ctx, GetUpdatesRequest{
			Offset:  p.offset,
			Timeout: p.timeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			consecutiveErrors++
			p.metrics.PollErrors.Inc()
			p.logger.Error("poll failed", "error", err, "consecutive", consecutiveErrors)
			if consecutiveErrors >= pollErrorThreshold {
				p.logger.Warn("pausing polling after repeated failures", "pause", pollErrorPause)
				select {
				case <-p.stopCh:
					return
				case <-time.After(pollErrorPause):
				}
				consecutiveErrors = 0
			}
			continue
		}
		consecutiveErrors = 0

		for _, u := range updates {
			p.metrics.UpdatesReceived.Inc()
			if !p.queue.Push(u) {
				return
			}
			// Confirm the update so the API does not redeliver it. The
			// offset only moves forward even if updates arrive out of order.
			if p.offset < u.UpdateID+1 {
				p.offset = u.UpdateID + 1
			}
		}
		p.metrics.QueueDepth.Set(float64(p.queue.Len()))
	}
}

// stopContext derives a context cancelled when Stop is called, so an
// in-flight long poll aborts immediately instead of running out its window.
func (p *Poller) stopContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-p.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
