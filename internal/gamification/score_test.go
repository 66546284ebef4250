package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreText(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		expected int
	}{
		{"greeting with question", "Oi, como você está hoje?", 70},
		{"empty content", "", 50},
		{"short no signals", "xyz", 50},
		{"short with vowel", "oi", 55},
		{"question adds five", "hmm?", 55},
		{"exclamation adds five", "wow!", 60},
		{"emoji adds ten", "😀", 60},
		{"long enthusiastic", "Adorei demais a nossa conversa de ontem, foi incrível!", 80},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ScoreText(tc.content))
		})
	}
}

func TestScoreTextBounds(t *testing.T) {
	// every bonus at once still cannot leave the scale
	stacked := "Você é incrível! Adorei nossa conversa, me conta mais? 😀 vamos continuar falando aqui"
	score := ScoreText(stacked)
	assert.LessOrEqual(t, score, 100)
	assert.GreaterOrEqual(t, score, 0)
}

func TestScoreTextDeterministic(t *testing.T) {
	content := "Oi, como você está hoje?"
	first := ScoreText(content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ScoreText(content))
	}
}

func TestXPForScore(t *testing.T) {
	cases := []struct {
		score    int
		expected int
	}{
		{100, 25},
		{90, 25},
		{89, 20},
		{80, 20},
		{79, 15},
		{70, 15},
		{69, 10},
		{60, 10},
		{59, 5},
		{0, 5},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, XPForScore(tc.score), "score %d", tc.score)
	}
}
