package datastore

import (
	"context"
	"time"

	"flirtquest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTablePersona(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Persona)(nil)).IfNotExists().Exec(ctx)
	return err
}

func FindPersonaByUserID(ctx context.Context, db *bun.DB, userID string) (*models.Persona, error) {
	var persona models.Persona
	err := db.NewSelect().Model(&persona).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &persona, nil
}

func UpsertPersona(ctx context.Context, db *bun.DB, persona *models.Persona) (*models.Persona, error) {
	persona.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(persona).
		On("CONFLICT (user_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("personality = EXCLUDED.personality").
		Set("interests = EXCLUDED.interests").
		Set("communication_style = EXCLUDED.communication_style").
		Set("response_length = EXCLUDED.response_length").
		Set("humor_level = EXCLUDED.humor_level").
		Set("flirtiness_level = EXCLUDED.flirtiness_level").
		Set("supportiveness_level = EXCLUDED.supportiveness_level").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return persona, nil
}

func DeletePersona(ctx context.Context, db *bun.DB, userID string) error {
	_, err := db.NewDelete().
		Model((*models.Persona)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}
