package store

import (
	"context"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/realtime"
)

// WithNotifications wraps s so that every successful mutation is pushed to
// the owner's open dashboards. Publish failures are logged, never returned:
// the write already happened.
func WithNotifications(s Store, pub realtime.Publisher, log logger.Logger) Store {
	return &notifying{Store: s, pub: pub, log: log}
}

type notifying struct {
	Store
	pub realtime.Publisher
	log logger.Logger
}

func (n *notifying) Insert(ctx context.Context, owner, url, title string) (domain.Bookmark, error) {
	b, err := n.Store.Insert(ctx, owner, url, title)
	if err != nil {
		return b, err
	}
	n.publish(ctx, realtime.InsertEvent(b))
	return b, nil
}

func (n *notifying) Delete(ctx context.Context, owner, id string) error {
	if err := n.Store.Delete(ctx, owner, id); err != nil {
		return err
	}
	n.publish(ctx, realtime.DeleteEvent(owner, id))
	return nil
}

func (n *notifying) publish(ctx context.Context, ev realtime.Event) {
	if err := n.pub.Publish(context.WithoutCancel(ctx), ev); err != nil {
		n.log.Warn("failed to publish change",
			logger.String("type", string(ev.Kind)),
			logger.String("owner", ev.Owner),
			logger.String("id", ev.Bookmark.ID),
			logger.Error(err),
		)
	}
}
