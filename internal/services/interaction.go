package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flirtquest/internal/datastore"
	"flirtquest/internal/gamification"
	"flirtquest/internal/interfaces"
	"flirtquest/internal/models"
	"flirtquest/internal/pkg/caching"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceInteraction struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	limiter            interfaces.Limiter

	serviceAI           *ServiceAI
	serviceGamification *ServiceGamification
	serviceConfig       *ServiceConfig
}

func NewServiceInteraction(container *do.Injector) (*ServiceInteraction, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceAI, err := do.Invoke[*ServiceAI](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceInteraction{container, redisDB, postgresDB, readonlyPostgresDB, cache, limiter, serviceAI, serviceGamification, serviceConfig}, nil
}

type SubmitInteractionInput struct {
	Content string `json:"content"`
	Type    string `json:"type"`
	Channel string `json:"channel"`

	// set by the image path, which produces its own reply instead of asking
	// the coach model
	replyOverride string
}

type InteractionResult struct {
	Interaction *models.Interaction       `json:"interaction"`
	Reply       string                    `json:"reply"`
	Feedback    *models.Feedback          `json:"feedback"`
	Level       gamification.Level        `json:"level"`
	NewUnlocks  []*models.UserAchievement `json:"new_unlocks,omitempty"`
}

// Submit runs the full interaction pipeline: rate limit, score, persist,
// streak, coach reply, then the achievement sweep.
func (service *ServiceInteraction) Submit(ctx context.Context, user *models.User, input *SubmitInteractionInput) (*InteractionResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errorx.Wrap(errors.New("empty content"), errorx.Validation)
	}
	if len(content) > 2000 {
		return nil, errorx.Wrap(errors.New("content too long"), errorx.Validation)
	}

	interactionType := input.Type
	if interactionType == "" {
		interactionType = models.InteractionText
	}
	channel := input.Channel
	if channel == "" {
		channel = models.ChannelApp
	}

	err := service.limiter.Allow(ctx, RateKeyInteraction(user.ID), redis_rate.PerMinute(INTERACTION_RATE_LIMIT_PER_MINUTE))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.RateLimiting)
	}

	if moderation := service.serviceAI.Moderate(ctx, content); !moderation.Safe {
		return nil, errorx.Wrap(fmt.Errorf("%w: %s", ErrContentFlagged, moderation.Reason), errorx.Validation)
	}

	score := gamification.ScoreText(content)
	xp := gamification.XPForScore(score)

	reply := input.replyOverride
	if reply == "" {
		persona, _ := datastore.FindPersonaByUserID(ctx, service.readonlyPostgresDB, user.ID)
		reply = service.serviceAI.GenerateReply(ctx, user.ID, content, persona)
	}

	interaction := &models.Interaction{
		UserID:     user.ID,
		Type:       interactionType,
		Channel:    channel,
		Content:    content,
		AIResponse: reply,
		Score:      score,
		XP:         xp,
		CreatedAt:  time.Now(),
	}

	loc := service.serviceConfig.GetLocation(ctx)
	resolver := gamification.NewPeriodResolver(loc)

	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(interaction).Exec(ctx); err != nil {
			return err
		}

		stats, err := datastore.FindUserStats(ctx, tx, user.ID)
		if err != nil {
			stats = &models.UserStats{UserID: user.ID}
		}

		now := time.Now().In(loc)
		streak := gamification.NextStreak(resolver, stats.LastActiveDate, now, stats.CurrentStreak)
		longest := stats.LongestStreak
		if streak > longest {
			longest = streak
		}

		if err := datastore.RecordUserActivity(ctx, tx, user.ID, streak, longest, resolver.StartOfDay(now)); err != nil {
			return err
		}
		return service.serviceGamification.AwardXP(ctx, tx, user.ID, xp)
	})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	service.serviceGamification.PublishXP(ctx, user.ID, xp)
	_ = service.cache.Delete(ctx, DBKeyMissionBoard(user.ID))

	unlocks, _ := service.serviceGamification.CheckAchievements(ctx, user.ID)

	stats, err := service.serviceGamification.GetStats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &InteractionResult{
		Interaction: interaction,
		Reply:       reply,
		Feedback:    buildFeedback(content, score),
		Level:       gamification.LevelProgress(stats.TotalXP),
		NewUnlocks:  unlocks,
	}, nil
}

// SubmitAudio runs a voice message through the text pipeline. Transcription
// is a placeholder until a speech upstream lands; the constant transcript
// keeps the rest of the flow exercised end to end.
// TODO: call a real transcription endpoint once one is provisioned.
func (service *ServiceInteraction) SubmitAudio(ctx context.Context, user *models.User, channel string) (*InteractionResult, error) {
	return service.Submit(ctx, user, &SubmitInteractionInput{
		Content: "Olá, como você está hoje?",
		Type:    models.InteractionAudio,
		Channel: channel,
	})
}

// SubmitImage records a style-analysis interaction. The event type drives the
// synthesized content, so the score stays deterministic per event.
func (service *ServiceInteraction) SubmitImage(ctx context.Context, user *models.User, eventType, channel string) (*InteractionResult, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		eventType = "um encontro casual"
	}

	return service.Submit(ctx, user, &SubmitInteractionInput{
		Content:       fmt.Sprintf("Análise de look para %s", eventType),
		Type:          models.InteractionImage,
		Channel:       channel,
		replyOverride: fmt.Sprintf("Seu look está perfeito para %s! Você demonstra muito estilo e personalidade.", eventType),
	})
}

func (service *ServiceInteraction) History(ctx context.Context, userID string, limit, offset int) ([]*models.Interaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	interactions, err := datastore.GetInteractionsByUser(ctx, service.readonlyPostgresDB, userID, limit, offset)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return interactions, nil
}

func (service *ServiceInteraction) Stats(ctx context.Context, userID string) (*models.InteractionStats, error) {
	stats, err := datastore.GetInteractionStats(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return stats, nil
}

// buildFeedback derives the skill breakdown from the score so repeated calls
// with the same message always agree.
func buildFeedback(content string, score int) *models.Feedback {
	breakdown := map[string]int{
		"confidence": clampScore(score + 5),
		"humor":      clampScore(score - 5),
		"charisma":   score,
		"clarity":    clampScore(score + 10),
	}

	var suggestions []string
	if !strings.ContainsRune(content, '?') {
		suggestions = append(suggestions, "Termine com uma pergunta para manter a conversa fluindo.")
	}
	if len([]rune(content)) <= 10 {
		suggestions = append(suggestions, "Mensagens um pouco mais longas mostram mais interesse.")
	}
	if score < 60 {
		suggestions = append(suggestions, "Acrescente algo pessoal, detalhes criam conexão.")
	}

	next := "Continue a conversa e pergunte algo sobre o dia dela."
	if score >= 80 {
		next = "Ótimo ritmo! Que tal sugerir um assunto novo?"
	}

	return &models.Feedback{
		Breakdown:   breakdown,
		Suggestions: suggestions,
		NextStep:    next,
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
