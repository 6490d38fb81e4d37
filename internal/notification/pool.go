package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"room-booking-backend/internal/metrics"
	"room-booking-backend/internal/model"
	"room-booking-backend/internal/store"
)

type job struct {
	resourceID string
	queuedAt   time.Time
}

// Pool fans "free again" messages out to the subscribers of a resource on
// a fixed number of goroutines.
type Pool struct {
	workers int
	queue   chan job
	store   store.Store
	options webpush.Options
	sender  Sender
	wg      sync.WaitGroup
}

// PoolOption customises a Pool.
type PoolOption func(*Pool)

// WithSender replaces the web push transport.
func WithSender(s Sender) PoolOption {
	return func(p *Pool) { p.sender = s }
}

// NewPool creates a pool of workers goroutines with room for queueSize
// pending resources. options carries the VAPID keys.
func NewPool(workers, queueSize int, st store.Store, options *webpush.Options, opts ...PoolOption) *Pool {
	workers = max(workers, 1)
	p := &Pool{
		workers: workers,
		queue:   make(chan job, max(queueSize, workers)),
		store:   st,
		sender:  WebPushSender{},
	}
	if options != nil {
		p.options = *options
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start launches the workers. They stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.work(ctx, id)
		}(i)
	}
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) work(ctx context.Context, id int) {
	for {
		select {
		case j := <-p.queue:
			log.Printf("Notifier %d: resource %s free again (queued %s)", id, j.resourceID, time.Since(j.queuedAt).Round(time.Millisecond))
			p.deliver(ctx, j.resourceID)
		case <-ctx.Done():
			return
		}
	}
}

// Dispatch queues resourceID without blocking. A full queue drops the job.
func (p *Pool) Dispatch(resourceID string) {
	select {
	case p.queue <- job{resourceID: resourceID, queuedAt: time.Now()}:
	default:
		metrics.PushesSent.WithLabelValues("dropped").Inc()
		log.Printf("Notification queue full, dropping job for resource %s", resourceID)
	}
}

// deliver sends one message to every subscriber of resourceID.
func (p *Pool) deliver(ctx context.Context, resourceID string) {
	subs, err := p.store.SubscriptionsForResource(ctx, resourceID)
	if err != nil {
		log.Printf("Error fetching subscriptions for resource %s: %v", resourceID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(NewMessage(resourceID))
	if err != nil {
		log.Printf("Error encoding notification for resource %s: %v", resourceID, err)
		return
	}

	options := p.options
	options.Topic = topic(resourceID)
	options.Urgency = webpush.UrgencyNormal

	for _, sub := range subs {
		outcome := p.push(ctx, sub, payload, &options)
		metrics.PushesSent.WithLabelValues(outcome).Inc()
	}
}

// push sends to a single subscription and reports the outcome label.
// Subscriptions the push service no longer knows are deleted.
func (p *Pool) push(ctx context.Context, sub model.PushSubscription, payload []byte, options *webpush.Options) string {
	resp, err := p.sender.Send(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256DH, Auth: sub.Auth},
	}, options)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return "error"
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone, resp.StatusCode == http.StatusNotFound:
		log.Printf("Subscription %s is gone, deleting it", sub.Endpoint)
		if err := p.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return "expired"
	case resp.StatusCode >= 300:
		log.Printf("Push service rejected notification to %s: %s", sub.Endpoint, resp.Status)
		return "rejected"
	default:
		return "sent"
	}
}
