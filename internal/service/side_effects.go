package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/internal/repo"
	"github.com/Skotchmaster/plant_shop/pkg/events"
	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

// Side effects run after commit. Their failures are logged and swallowed.

// sideEffectBudget bounds all post-commit work of one operation together.
const sideEffectBudget = 3 * time.Second

// afterCommit detaches ctx from request cancellation and gives the side
// effects one shared deadline.
func afterCommit(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectBudget)
}

func audit(ctx context.Context, r *repo.GormRepo, owner models.Owner, action string, data map[string]any) {
	if err := r.WriteAudit(ctx, owner, action, data); err != nil {
		logging.FromContext(ctx).Warn("audit_write_failed", "action", action, "error", err)
	}
}

func publish(ctx context.Context, pub events.Publisher, topic, key string, event map[string]any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
