package mqtt

import (
	"context"

	"github.com/kilianp07/carprice/core/events"
	"github.com/kilianp07/carprice/core/logger"
	"github.com/kilianp07/carprice/core/model"
)

// EventPublisher is the subset of Publisher used by Forward.
type EventPublisher interface {
	PublishEstimate(ctx context.Context, est model.PriceEstimate) error
	PublishRejection(ctx context.Context, ev events.RejectionEvent) error
}

// Forward relays events read from sub to pub until ctx is canceled or sub is
// closed. Publish failures are logged and do not stop the loop.
func Forward(ctx context.Context, sub <-chan events.Event, pub EventPublisher, log logger.Logger) {
	if log == nil {
		log = logger.NopLogger{}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			var err error
			switch e := ev.(type) {
			case events.EstimateEvent:
				err = pub.PublishEstimate(ctx, e.Estimate)
			case events.RejectionEvent:
				err = pub.PublishRejection(ctx, e)
			}
			if err != nil {
				log.Warnf("forward %s event: %v", ev.Kind(), err)
			}
		}
	}
}
