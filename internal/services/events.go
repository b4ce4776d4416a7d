package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gopher0727/Accounts/internal/events"
	"github.com/Gopher0727/Accounts/internal/utils"
	logger "github.com/Gopher0727/Accounts/middleware/log"
)

// notifier publishes account events once the owning transaction has committed.
// With a pool the publish runs off the request path; failures are logged only.
type notifier struct {
	publisher events.Publisher
	pool      *utils.WorkerPool
	logger    *logger.Logger
}

func (n notifier) notify(ctx context.Context, event events.AccountEvent) {
	if n.publisher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	publish := func() {
		if err := n.publisher.Publish(ctx, event); err != nil {
			n.logger.WarnContext(ctx, "failed to publish account event",
				zap.String("type", string(event.Type)),
				zap.Uint64("account_id", event.AccountID),
				zap.Error(err),
			)
		}
	}
	if n.pool == nil {
		publish()
		return
	}
	n.pool.Submit(publish)
}
