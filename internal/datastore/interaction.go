package datastore

import (
	"context"
	"time"

	"flirtquest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableInteraction(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Interaction)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Interaction)(nil)).Index("index_interaction_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Interaction)(nil)).Index("index_interaction_user_id_created_at").IfNotExists().Column("user_id", "created_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateInteraction(ctx context.Context, db *bun.DB, interaction *models.Interaction) (*models.Interaction, error) {
	_, err := db.NewInsert().Model(interaction).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return interaction, nil
}

func GetInteractionsByUser(ctx context.Context, db *bun.DB, userID string, limit, offset int) ([]*models.Interaction, error) {
	var interactions []*models.Interaction
	err := db.NewSelect().Model(&interactions).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return interactions, nil
}

func CountInteractionsByUser(ctx context.Context, db *bun.DB, userID string) (int, error) {
	count, err := db.NewSelect().Model((*models.Interaction)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func CountInteractionsWithMinScore(ctx context.Context, db *bun.DB, userID string, minScore int) (int, error) {
	count, err := db.NewSelect().Model((*models.Interaction)(nil)).
		Where("user_id = ?", userID).
		Where("score >= ?", minScore).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func CountQualifyingInteractionsSince(ctx context.Context, db *bun.DB, userID, interactionType string, since time.Time, minScore, minLength int, mustContain string) (int, error) {
	q := db.NewSelect().Model((*models.Interaction)(nil)).
		Where("user_id = ?", userID).
		Where("type = ?", interactionType).
		Where("created_at >= ?", since)
	if minScore > 0 {
		q = q.Where("score >= ?", minScore)
	}
	if minLength > 0 {
		q = q.Where("length(content) >= ?", minLength)
	}
	if mustContain != "" {
		q = q.Where("content ILIKE ?", "%"+mustContain+"%")
	}

	count, err := q.Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func GetInteractionStats(ctx context.Context, db *bun.DB, userID string) (*models.InteractionStats, error) {
	var row struct {
		Total   int `bun:"total"`
		AvgScr  int `bun:"avg_score"`
		TotalXP int `bun:"total_xp"`
	}
	err := db.NewSelect().Model((*models.Interaction)(nil)).
		ColumnExpr("count(*) AS total").
		ColumnExpr("coalesce(round(avg(score)), 0) AS avg_score").
		ColumnExpr("coalesce(sum(xp), 0) AS total_xp").
		Where("user_id = ?", userID).
		Scan(ctx, &row)
	if err != nil {
		return nil, err
	}

	var breakdownRows []struct {
		Type  string `bun:"type"`
		Count int    `bun:"count"`
	}
	err = db.NewSelect().Model((*models.Interaction)(nil)).
		ColumnExpr("type").
		ColumnExpr("count(*) AS count").
		Where("user_id = ?", userID).
		GroupExpr("type").
		Scan(ctx, &breakdownRows)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]int, len(breakdownRows))
	for _, r := range breakdownRows {
		breakdown[r.Type] = r.Count
	}

	return &models.InteractionStats{
		TotalInteractions: row.Total,
		AverageScore:      row.AvgScr,
		TotalXPEarned:     row.TotalXP,
		TypeBreakdown:     breakdown,
	}, nil
}
