package redis_store

import (
	"context"
	"fmt"
	"time"

	"flirtquest/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	LEADERBOARD_OVERALL = "overall"
	LEADERBOARD_WEEKLY  = "weekly"

	conversationHistoryLimit = 20
	conversationHistoryTTL   = 7 * 24 * time.Hour
)

func dbKeyLeaderboard(period string) string {
	return fmt.Sprintf("leaderboard:%s", period)
}

func dbKeyWeeklyLeaderboard(weekStart time.Time) string {
	return fmt.Sprintf("leaderboard:weekly:%s", weekStart.Format("2006-01-02"))
}

func dbKeyConversationHistory(userID string) string {
	return fmt.Sprintf("user:%s:conversation", userID)
}

func dbKeyEmailVerification(token string) string {
	return fmt.Sprintf("email_verification:%s", token)
}

func dbKeyPasswordReset(token string) string {
	return fmt.Sprintf("password_reset:%s", token)
}

func dbKeyRevokedToken(token string) string {
	return fmt.Sprintf("revoked_token:%s", token)
}

func SetLeaderboardScore(ctx context.Context, cmd redis.Cmdable, period, userID string, totalXP int) error {
	return cmd.ZAdd(ctx, dbKeyLeaderboard(period), redis.Z{
		Score:  float64(totalXP),
		Member: userID,
	}).Err()
}

func IncrLeaderboardScore(ctx context.Context, cmd redis.Cmdable, period, userID string, xp int) error {
	return cmd.ZIncrBy(ctx, dbKeyLeaderboard(period), float64(xp), userID).Err()
}

func IncrWeeklyLeaderboardScore(ctx context.Context, cmd redis.Cmdable, weekStart time.Time, userID string, xp int) error {
	key := dbKeyWeeklyLeaderboard(weekStart)
	err := cmd.ZIncrBy(ctx, key, float64(xp), userID).Err()
	if err != nil {
		return err
	}
	// weekly boards expire on their own, two weeks covers the rollover
	return cmd.Expire(ctx, key, 14*24*time.Hour).Err()
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, period string, num int) ([]*models.LeaderboardItem, error) {
	return rangeLeaderboard(ctx, cmd, dbKeyLeaderboard(period), 0, int64(num-1))
}

func GetWeeklyLeaderboard(ctx context.Context, cmd redis.Cmdable, weekStart time.Time, num int) ([]*models.LeaderboardItem, error) {
	return rangeLeaderboard(ctx, cmd, dbKeyWeeklyLeaderboard(weekStart), 0, int64(num-1))
}

// GetLeaderboardWindow reads the board slice [start, stop] by rank, used for
// the around-me view.
func GetLeaderboardWindow(ctx context.Context, cmd redis.Cmdable, period string, start, stop int64) ([]*models.LeaderboardItem, error) {
	return rangeLeaderboard(ctx, cmd, dbKeyLeaderboard(period), start, stop)
}

func GetWeeklyLeaderboardWindow(ctx context.Context, cmd redis.Cmdable, weekStart time.Time, start, stop int64) ([]*models.LeaderboardItem, error) {
	return rangeLeaderboard(ctx, cmd, dbKeyWeeklyLeaderboard(weekStart), start, stop)
}

func rangeLeaderboard(ctx context.Context, cmd redis.Cmdable, key string, start, stop int64) ([]*models.LeaderboardItem, error) {
	if start < 0 {
		start = 0
	}
	items, err := cmd.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*models.LeaderboardItem, 0, len(items))
	for i, item := range items {
		results = append(results, &models.LeaderboardItem{
			UserID: item.Member.(string),
			Score:  item.Score,
			Rank:   start + int64(i) + 1,
		})
	}

	return results, nil
}

// GetLeaderboardRank returns nil when the user is not on the board yet.
func GetLeaderboardRank(ctx context.Context, cmd redis.Cmdable, period, userID string) (*models.LeaderboardItem, error) {
	return rankOf(ctx, cmd, dbKeyLeaderboard(period), userID)
}

func GetWeeklyLeaderboardRank(ctx context.Context, cmd redis.Cmdable, weekStart time.Time, userID string) (*models.LeaderboardItem, error) {
	return rankOf(ctx, cmd, dbKeyWeeklyLeaderboard(weekStart), userID)
}

func rankOf(ctx context.Context, cmd redis.Cmdable, key, userID string) (*models.LeaderboardItem, error) {
	rank, err := cmd.ZRevRank(ctx, key, userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	score, err := cmd.ZScore(ctx, key, userID).Result()
	if err != nil {
		return nil, err
	}

	return &models.LeaderboardItem{
		UserID: userID,
		Score:  score,
		Rank:   rank + 1,
	}, nil
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, period string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(period)).Err()
}

func LeaderboardParticipantsCount(ctx context.Context, cmd redis.Cmdable, period string) (int64, error) {
	return cmd.ZCard(ctx, dbKeyLeaderboard(period)).Result()
}

// ConversationTurn is one user message and the coach reply, kept so the AI
// prompt can carry recent context.
type ConversationTurn struct {
	Role      string    `msgpack:"role"`
	Content   string    `msgpack:"content"`
	CreatedAt time.Time `msgpack:"created_at"`
}

func PushConversationTurn(ctx context.Context, cmd redis.Cmdable, userID string, turn *ConversationTurn) error {
	b, err := msgpack.Marshal(turn)
	if err != nil {
		return err
	}

	key := dbKeyConversationHistory(userID)
	err = cmd.RPush(ctx, key, b).Err()
	if err != nil {
		return err
	}

	err = cmd.LTrim(ctx, key, -conversationHistoryLimit, -1).Err()
	if err != nil {
		return err
	}

	return cmd.Expire(ctx, key, conversationHistoryTTL).Err()
}

func GetConversationHistory(ctx context.Context, cmd redis.Cmdable, userID string) ([]*ConversationTurn, error) {
	raws, err := cmd.LRange(ctx, dbKeyConversationHistory(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	turns := make([]*ConversationTurn, 0, len(raws))
	for _, raw := range raws {
		var turn ConversationTurn
		err = msgpack.Unmarshal([]byte(raw), &turn)
		if err != nil {
			continue
		}
		turns = append(turns, &turn)
	}

	return turns, nil
}

func ClearConversationHistory(ctx context.Context, cmd redis.Cmdable, userID string) error {
	return cmd.Del(ctx, dbKeyConversationHistory(userID)).Err()
}

func SetEmailVerificationToken(ctx context.Context, cmd redis.Cmdable, token, userID string, ttl time.Duration) error {
	return cmd.Set(ctx, dbKeyEmailVerification(token), userID, ttl).Err()
}

func ConsumeEmailVerificationToken(ctx context.Context, cmd redis.Cmdable, token string) (string, error) {
	return cmd.GetDel(ctx, dbKeyEmailVerification(token)).Result()
}

func SetPasswordResetToken(ctx context.Context, cmd redis.Cmdable, token, userID string, ttl time.Duration) error {
	return cmd.Set(ctx, dbKeyPasswordReset(token), userID, ttl).Err()
}

func ConsumePasswordResetToken(ctx context.Context, cmd redis.Cmdable, token string) (string, error) {
	return cmd.GetDel(ctx, dbKeyPasswordReset(token)).Result()
}

// RevokeToken keeps a logged-out refresh token on a denylist until it would
// have expired anyway.
func RevokeToken(ctx context.Context, cmd redis.Cmdable, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return cmd.Set(ctx, dbKeyRevokedToken(token), "1", ttl).Err()
}

func IsTokenRevoked(ctx context.Context, cmd redis.Cmdable, token string) (bool, error) {
	_, err := cmd.Get(ctx, dbKeyRevokedToken(token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
