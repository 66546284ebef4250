package datastore

import (
	"context"

	"flirtquest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableConfig(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Config)(nil)).IfNotExists().Exec(ctx)
	return err
}

func GetConfig(ctx context.Context, db *bun.DB, key string) (*models.Config, error) {
	var config models.Config
	err := db.NewSelect().Model(&config).Where("key = ?", key).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func GetConfigs(ctx context.Context, db *bun.DB) ([]*models.Config, error) {
	var configs []*models.Config
	err := db.NewSelect().Model(&configs).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return configs, nil
}

func SetConfig(ctx context.Context, db *bun.DB, key, value string) error {
	config := &models.Config{Key: key, Value: value}
	_, err := db.NewInsert().Model(config).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

func SeedConfig(ctx context.Context, db *bun.DB, key, value string) error {
	config := &models.Config{Key: key, Value: value}
	_, err := db.NewInsert().Model(config).
		On("CONFLICT (key) DO NOTHING").
		Exec(ctx)
	return err
}
