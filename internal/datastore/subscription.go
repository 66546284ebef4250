package datastore

import (
	"context"
	"time"

	"flirtquest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSubscription(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Subscription)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Subscription)(nil)).Index("index_subscription_status").IfNotExists().Column("status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindSubscriptionByUserID(ctx context.Context, db *bun.DB, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.NewSelect().Model(&sub).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func UpsertSubscription(ctx context.Context, db *bun.DB, sub *models.Subscription) (*models.Subscription, error) {
	sub.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(sub).
		On("CONFLICT (user_id) DO UPDATE").
		Set("plan = EXCLUDED.plan").
		Set("status = EXCLUDED.status").
		Set("start_date = EXCLUDED.start_date").
		Set("end_date = EXCLUDED.end_date").
		Set("auto_renew = EXCLUDED.auto_renew").
		Set("provider = EXCLUDED.provider").
		Set("external_id = EXCLUDED.external_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func CancelSubscription(ctx context.Context, db *bun.DB, userID string) error {
	_, err := db.NewUpdate().
		Model((*models.Subscription)(nil)).
		Set("status = ?", models.SubscriptionCanceled).
		Set("auto_renew = false").
		Set("updated_at = current_timestamp").
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func ExpireSubscriptionsBefore(ctx context.Context, db *bun.DB, cutoff time.Time) (int, error) {
	res, err := db.NewUpdate().
		Model((*models.Subscription)(nil)).
		Set("status = ?", models.SubscriptionExpired).
		Set("updated_at = current_timestamp").
		Where("status = ?", models.SubscriptionActive).
		Where("end_date IS NOT NULL").
		Where("end_date < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
