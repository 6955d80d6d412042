package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/VladKvetkin/mygameserver/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	queueSize     = 256
	workersNumber = 4
)

// Notifier delivers review events to an external webhook. Delivery is best
// effort: a full queue drops the event and failures are only logged.
type Notifier struct {
	url     string
	events  chan models.ReviewEvent
	client  *resty.Client
	limiter *rate.Limiter
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:     url,
		events:  make(chan models.ReviewEvent, queueSize),
		client:  initClient(),
		limiter: rate.NewLimiter(rate.Limit(20), 5),
	}
}

func initClient() *resty.Client {
	client := resty.New()

	client.
		SetTimeout(5 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	return client
}

func (n *Notifier) Enabled() bool {
	return n.url != ""
}

func (n *Notifier) Publish(event models.ReviewEvent) {
	if !n.Enabled() {
		return
	}

	select {
	case n.events <- event:
	default:
		zap.L().Info("notify queue full, dropping event", zap.String("orderId", event.Order.OrderID))
	}
}

// Start runs the delivery workers until ctx is done.
func (n *Notifier) Start(ctx context.Context) error {
	if !n.Enabled() {
		<-ctx.Done()
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)

	for i := 0; i < workersNumber; i++ {
		eg.Go(func() error {
			for {
				select {
				case event := <-n.events:
					if err := n.deliver(ctx, event); err != nil {
						zap.L().Info("error deliver review event", zap.String("orderId", event.Order.OrderID), zap.Error(err))
					}
				case <-ctx.Done():
					return nil
				}
			}
		})
	}

	return eg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, event models.ReviewEvent) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	response, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(n.url)
	if err != nil {
		return err
	}

	if response.StatusCode() < http.StatusOK || response.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("error deliver review event, invalid status: %v", response.Status())
	}

	return nil
}
