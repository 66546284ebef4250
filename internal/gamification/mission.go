package gamification

import (
	"math"
	"strings"

	"flirtquest/internal/models"
)

// MatchesRequirement reports whether a single interaction counts toward a
// mission's completion predicate.
func MatchesRequirement(req models.MissionRequirement, content string, score int) bool {
	if req.MinLength > 0 && len([]rune(content)) < req.MinLength {
		return false
	}
	if req.MustContain != "" && !strings.Contains(content, req.MustContain) {
		return false
	}
	if req.MinScore > 0 && score < req.MinScore {
		return false
	}
	return true
}

// RequiredCount normalizes the requirement count; missing counts mean one.
func RequiredCount(req models.MissionRequirement) int {
	if req.Count < 1 {
		return 1
	}
	return req.Count
}

// MissionSatisfied reports whether enough qualifying interactions were
// recorded in the current period.
func MissionSatisfied(req models.MissionRequirement, qualifying int) bool {
	return qualifying >= RequiredCount(req)
}

// Progress is the rounded have/need percentage clamped to 100.
func Progress(have, need int) int {
	if need < 1 {
		need = 1
	}
	pct := int(math.Round(float64(have) / float64(need) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}
