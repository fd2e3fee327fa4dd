package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	repo "storefront/internal/repository"
)

const defaultRelayBatch = 100

// NotificationRelay は未送信の在庫通知を外部（Kafka）へ流す。
// チェックアウトのTxとは独立していて、失敗しても次の周期で再送する。
// 送信後・既読化前に落ちると同じ通知が2回出ることがある（at-least-once）。
type NotificationRelay struct {
	notifications repo.NotificationRepository
	publisher     NotificationPublisher
	batch         int
	log           *slog.Logger
	now           func() time.Time
}

func NewNotificationRelay(notifications repo.NotificationRepository, publisher NotificationPublisher, batch int, log *slog.Logger) *NotificationRelay {
	if batch <= 0 {
		batch = defaultRelayBatch
	}
	return &NotificationRelay{
		notifications: notifications,
		publisher:     publisher,
		batch:         batch,
		log:           log,
		now:           time.Now,
	}
}

// RunOnce は1バッチ送信して、送れた件数を返す。
// 1件でも送信に失敗したらそこで止める（順序を崩さない）。
func (r *NotificationRelay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.notifications.ListUnpublished(ctx, r.batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range pending {
		if err := r.publisher.Publish(ctx, n); err != nil {
			return sent, err
		}
		if err := r.notifications.MarkPublished(ctx, n.ID, r.now()); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// Run はctxが終わるまでintervalごとにRunOnceする
func (r *NotificationRelay) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := r.RunOnce(ctx)
			if err != nil && ctx.Err() == nil {
				r.log.WarnContext(ctx, "notification relay failed", "sent", n, "err", err)
				continue
			}
			if n > 0 {
				r.log.InfoContext(ctx, "notifications relayed", "sent", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
