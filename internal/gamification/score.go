package gamification

import "strings"

const (
	baseScore = 50
	minScore  = 0
	maxScore  = 100
)

// ScoreText maps a user message to a quality score in [0,100]. The rules are
// additive and the result depends only on the content, so the same message
// always scores the same.
func ScoreText(content string) int {
	score := baseScore

	runes := []rune(content)
	if len(runes) > 10 {
		score += 10
	}
	if strings.ContainsRune(content, '?') {
		score += 5
	}
	if strings.ContainsRune(content, '!') {
		score += 5
	}
	if containsEmoji(content) {
		score += 10
	}
	if len(runes) > 50 {
		score += 10
	}
	if strings.ContainsAny(content, "aeiouAEIOU") {
		score += 5
	}

	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// XPForScore converts an interaction score into the XP it earns.
func XPForScore(score int) int {
	switch {
	case score >= 90:
		return 25
	case score >= 80:
		return 20
	case score >= 70:
		return 15
	case score >= 60:
		return 10
	default:
		return 5
	}
}

func containsEmoji(content string) bool {
	for _, r := range content {
		if r >= 0x1F600 && r <= 0x1F64F {
			return true
		}
	}
	return false
}
