package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"flirtquest/internal/datastore"
	"flirtquest/internal/gamification"
	"flirtquest/internal/models"
	"flirtquest/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/mroth/weightedrand/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceMission struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache

	serviceGamification *ServiceGamification
	serviceConfig       *ServiceConfig
}

func NewServiceMission(container *do.Injector) (*ServiceMission, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
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

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceMission{container, redisDB, rs, postgresDB, readonlyPostgresDB, cache, serviceGamification, serviceConfig}, nil
}

func (service *ServiceMission) resolver(ctx context.Context) gamification.PeriodResolver {
	return gamification.NewPeriodResolver(service.serviceConfig.GetLocation(ctx))
}

// Board assembles the current mission list with per-mission status for the
// period each mission lives in.
func (service *ServiceMission) Board(ctx context.Context, userID string) (*models.MissionBoard, error) {
	missions, err := datastore.GetMissionsForUser(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	resolver := service.resolver(ctx)
	now := time.Now().In(resolver.Location())

	periodSet := map[time.Time]bool{}
	for _, mission := range missions {
		start, _ := resolver.Bounds(mission.Type, now)
		periodSet[start] = true
	}
	periods := make([]time.Time, 0, len(periodSet))
	for start := range periodSet {
		periods = append(periods, start)
	}

	instances, err := datastore.GetUserMissionsForPeriods(ctx, service.readonlyPostgresDB, userID, periods)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	bySlug := map[string]*models.UserMission{}
	for _, instance := range instances {
		bySlug[instance.MissionSlug] = instance
	}

	board := &models.MissionBoard{
		Missions:  make([]models.MissionWithStatus, 0, len(missions)),
		ResetTime: resolver.EndOfDay(now),
	}

	completed := 0
	for _, mission := range missions {
		start, _ := resolver.Bounds(mission.Type, now)
		item := models.MissionWithStatus{Mission: *mission}

		instance := bySlug[mission.Slug]
		if instance != nil && !instance.PeriodStart.Equal(start) {
			instance = nil
		}
		item.Status = instance.Status()
		if instance != nil {
			item.Progress = instance.Progress
			item.CompletedAt = instance.CompletedAt
		}
		if item.Status == models.MissionStatusCompleted {
			completed++
			item.Progress = 100
		}

		board.Missions = append(board.Missions, item)
	}

	board.TotalCompleted = completed
	board.TotalAvailable = len(missions)

	return board, nil
}

// BoardByType is the board narrowed to one mission type, for the daily and
// weekly tabs.
func (service *ServiceMission) BoardByType(ctx context.Context, userID, missionType string) (*models.MissionBoard, error) {
	board, err := service.Board(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.MissionWithStatus, 0, len(board.Missions))
	completed := 0
	for _, item := range board.Missions {
		if item.Type != missionType {
			continue
		}
		if item.Status == models.MissionStatusCompleted {
			completed++
		}
		filtered = append(filtered, item)
	}

	board.Missions = filtered
	board.TotalCompleted = completed
	board.TotalAvailable = len(filtered)
	return board, nil
}

// History lists the user's completed mission instances, newest first.
func (service *ServiceMission) History(ctx context.Context, userID string, limit, offset int) ([]*models.UserMission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	instances, err := datastore.GetCompletedMissions(ctx, service.readonlyPostgresDB, userID, limit, offset)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return instances, nil
}

// Start opens a mission instance for the current period. Starting twice in
// the same period is a conflict, as is starting one already completed.
func (service *ServiceMission) Start(ctx context.Context, userID, slug string) (*models.UserMission, error) {
	mission, err := service.findMissionForUser(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	resolver := service.resolver(ctx)
	now := time.Now().In(resolver.Location())
	periodStart, _ := resolver.Bounds(mission.Type, now)

	existing, err := datastore.FindUserMission(ctx, service.postgresDB, userID, slug, periodStart)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if existing != nil {
		if existing.CompletedAt != nil {
			return nil, errorx.Wrap(ErrMissionAlreadyCompleted, errorx.Invalid)
		}
		return nil, errorx.Wrap(ErrMissionAlreadyActive, errorx.Invalid)
	}

	instance := &models.UserMission{
		UserID:      userID,
		MissionSlug: slug,
		PeriodStart: periodStart,
		StartedAt:   now,
		Progress:    0,
	}

	created, err := datastore.InsertUserMission(ctx, service.postgresDB, instance)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !created {
		return nil, errorx.Wrap(ErrMissionAlreadyActive, errorx.Invalid)
	}

	_ = service.cache.Delete(ctx, DBKeyMissionBoard(userID))

	instance.Mission = mission
	return instance, nil
}

// Complete closes an open instance once the requirement holds, crediting the
// reward XP in the same transaction as the completion flip. The flip's
// completed_at guard makes a replayed call a conflict instead of a second
// award.
func (service *ServiceMission) Complete(ctx context.Context, userID, slug string) (*models.UserMission, error) {
	mutex := service.rs.NewMutex(LockKeyUserMission(userID, slug), redsync.WithExpiry(10*time.Second), redsync.WithTries(1))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrMissionLock, errorx.Invalid)
	}
	//nolint:errcheck
	defer mutex.Unlock()

	mission, err := service.findMissionForUser(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	resolver := service.resolver(ctx)
	now := time.Now().In(resolver.Location())
	periodStart, _ := resolver.Bounds(mission.Type, now)

	instance, err := datastore.FindUserMission(ctx, service.postgresDB, userID, slug, periodStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(ErrMissionNotStarted, errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if instance.CompletedAt != nil {
		return nil, errorx.Wrap(ErrMissionAlreadyCompleted, errorx.Invalid)
	}

	qualifying, err := service.qualifyingCount(ctx, userID, mission, periodStart)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !gamification.MissionSatisfied(mission.Requirement, qualifying) {
		_ = datastore.UpdateUserMissionProgress(ctx, service.postgresDB, instance.ID,
			gamification.Progress(qualifying, gamification.RequiredCount(mission.Requirement)))
		return nil, errorx.Wrap(ErrMissionNotSatisfied, errorx.Validation)
	}

	completedAt := time.Now()
	var flipped bool
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		flipped, err = datastore.CompleteUserMission(ctx, tx, instance.ID, completedAt)
		if err != nil {
			return err
		}
		if !flipped {
			return nil
		}
		return service.serviceGamification.AwardXP(ctx, tx, userID, mission.XPReward)
	})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !flipped {
		return nil, errorx.Wrap(ErrMissionAlreadyCompleted, errorx.Invalid)
	}

	service.serviceGamification.PublishXP(ctx, userID, mission.XPReward)
	_ = service.cache.Delete(ctx, DBKeyMissionBoard(userID))

	instance.CompletedAt = &completedAt
	instance.Progress = 100
	instance.Mission = mission
	return instance, nil
}

// RefreshProgress recomputes the stored progress of an open instance from the
// interactions inside the current period.
func (service *ServiceMission) RefreshProgress(ctx context.Context, userID, slug string) (*models.UserMission, error) {
	mission, err := service.findMissionForUser(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	resolver := service.resolver(ctx)
	now := time.Now().In(resolver.Location())
	periodStart, _ := resolver.Bounds(mission.Type, now)

	instance, err := datastore.FindUserMission(ctx, service.postgresDB, userID, slug, periodStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(ErrMissionNotStarted, errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if instance.CompletedAt != nil {
		instance.Mission = mission
		return instance, nil
	}

	qualifying, err := service.qualifyingCount(ctx, userID, mission, periodStart)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	progress := gamification.Progress(qualifying, gamification.RequiredCount(mission.Requirement))
	if progress != instance.Progress {
		if err := datastore.UpdateUserMissionProgress(ctx, service.postgresDB, instance.ID, progress); err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		instance.Progress = progress
	}

	instance.Mission = mission
	return instance, nil
}

type CreateCustomMissionInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	XPReward    int    `json:"xp_reward"`
	Count       int    `json:"count"`
	MinScore    int    `json:"min_score"`
}

// CreateCustomMission lets a user define their own daily challenge. The XP
// reward is capped by level so self-created missions cannot outpace the
// curated ones.
func (service *ServiceMission) CreateCustomMission(ctx context.Context, userID string, input *CreateCustomMissionInput) (*models.Mission, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errorx.Wrap(errors.New("missing title"), errorx.Validation)
	}
	if input.XPReward <= 0 {
		return nil, errorx.Wrap(errors.New("invalid xp reward"), errorx.Validation)
	}

	stats, err := service.serviceGamification.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := gamification.LevelFromXP(stats.TotalXP)
	if maxXP := gamification.MaxCustomMissionXP(level); input.XPReward > maxXP {
		return nil, errorx.Wrap(errors.New("xp reward above level cap"), errorx.Validation)
	}

	resolver := service.resolver(ctx)
	weekStart := resolver.StartOfWeek(time.Now().In(resolver.Location()))

	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CUSTOM_MISSIONS_PER_WEEK, CUSTOM_MISSIONS_WEEKLY_DEFAULT)
	created, err := datastore.CountCustomMissionsInPeriod(ctx, service.readonlyPostgresDB, userID, weekStart)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if created >= limit {
		return nil, errorx.Wrap(errors.New("weekly custom mission limit reached"), errorx.Invalid)
	}

	count := input.Count
	if count <= 0 {
		count = 1
	}

	mission := &models.Mission{
		Slug:        "custom-" + uuid.NewString(),
		Type:        models.MissionCustom,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Difficulty:  1,
		Requirement: models.MissionRequirement{
			Kind:     models.RequirementTextInteraction,
			Count:    count,
			MinScore: input.MinScore,
		},
		XPReward:  input.XPReward,
		CreatedBy: &userID,
		CreatedAt: time.Now(),
	}

	result, err := datastore.CreateMission(ctx, service.postgresDB, mission)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyMissionBoard(userID))
	return result, nil
}

var suggestionTemplates = []struct {
	suggestion models.MissionSuggestion
	weight     int
}{
	{models.MissionSuggestion{Title: "Quebra-gelo criativo", Description: "Comece uma conversa com algo inesperado", XPReward: 30, Difficulty: "easy"}, 5},
	{models.MissionSuggestion{Title: "Pergunta certeira", Description: "Faça três perguntas abertas hoje", XPReward: 40, Difficulty: "easy"}, 5},
	{models.MissionSuggestion{Title: "Elogio sincero", Description: "Elogie algo específico, não genérico", XPReward: 40, Difficulty: "medium"}, 3},
	{models.MissionSuggestion{Title: "Papo profundo", Description: "Mantenha uma conversa acima de 50 caracteres por mensagem", XPReward: 60, Difficulty: "medium"}, 3},
	{models.MissionSuggestion{Title: "Mestre do flerte", Description: "Consiga pontuação 85+ em duas mensagens", XPReward: 100, Difficulty: "hard"}, 1},
}

// Suggestions draws a weighted sample of mission ideas, easier ones more
// often.
func (service *ServiceMission) Suggestions(ctx context.Context, count int) ([]models.MissionSuggestion, error) {
	if count <= 0 || count > len(suggestionTemplates) {
		count = 3
	}

	choices := make([]weightedrand.Choice[models.MissionSuggestion, int], 0, len(suggestionTemplates))
	for _, tpl := range suggestionTemplates {
		choices = append(choices, weightedrand.NewChoice(tpl.suggestion, tpl.weight))
	}

	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	seen := map[string]bool{}
	suggestions := make([]models.MissionSuggestion, 0, count)
	for len(suggestions) < count {
		pick := chooser.Pick()
		if seen[pick.Title] {
			continue
		}
		seen[pick.Title] = true
		suggestions = append(suggestions, pick)
	}

	return suggestions, nil
}

func (service *ServiceMission) findMissionForUser(ctx context.Context, userID, slug string) (*models.Mission, error) {
	mission, err := datastore.FindMissionBySlug(ctx, service.postgresDB, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("mission not found"), errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if mission.CreatedBy != nil && *mission.CreatedBy != userID {
		return nil, errorx.Wrap(errors.New("mission not found"), errorx.NotExist)
	}

	return mission, nil
}

func (service *ServiceMission) qualifyingCount(ctx context.Context, userID string, mission *models.Mission, periodStart time.Time) (int, error) {
	interactionType := models.InteractionText
	if mission.Requirement.Kind == models.RequirementImageAnalysis {
		interactionType = models.InteractionImage
	}

	return datastore.CountQualifyingInteractionsSince(
		ctx, service.readonlyPostgresDB, userID, interactionType, periodStart,
		mission.Requirement.MinScore, mission.Requirement.MinLength, mission.Requirement.MustContain,
	)
}
