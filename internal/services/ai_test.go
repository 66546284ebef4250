package services

import (
	"context"
	"testing"

	"flirtquest/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFallbackReplyStaysInsideTable(t *testing.T) {
	service := &ServiceAI{}

	reply := service.fallbackReply(nil)
	assert.Contains(t, fallbackReplies[models.PersonalityPlayful], reply)

	romantic := &models.Persona{Personality: models.PersonalityRomantic}
	reply = service.fallbackReply(romantic)
	assert.Contains(t, fallbackReplies[models.PersonalityRomantic], reply)

	// unknown personalities degrade to the playful table
	odd := &models.Persona{Personality: "GRUMPY"}
	reply = service.fallbackReply(odd)
	assert.Contains(t, fallbackReplies[models.PersonalityPlayful], reply)
}

func TestAdviceFollowsLevelBand(t *testing.T) {
	service := &ServiceAI{}

	assert.Contains(t, beginnerAdvice, service.Advice(1))
	assert.Contains(t, beginnerAdvice, service.Advice(2))
	assert.Contains(t, intermediateAdvice, service.Advice(3))
	assert.Contains(t, intermediateAdvice, service.Advice(5))
	assert.Contains(t, advancedAdvice, service.Advice(6))
	assert.Contains(t, advancedAdvice, service.Advice(12))
}

func TestModerateWithoutUpstreamAllows(t *testing.T) {
	service := &ServiceAI{}

	result := service.Moderate(context.Background(), "qualquer coisa")
	assert.True(t, result.Safe)
	assert.Empty(t, result.Reason)
}

func TestSystemPromptUsesPersona(t *testing.T) {
	prompt := systemPrompt(nil)
	assert.Contains(t, prompt, "Sofia")

	persona := &models.Persona{
		Name:        "Valentina",
		Personality: models.PersonalityConfident,
		Interests:   []string{"dança", "fotografia"},
	}
	prompt = systemPrompt(persona)
	assert.Contains(t, prompt, "Valentina")
	assert.Contains(t, prompt, "confident")
	assert.Contains(t, prompt, "dança, fotografia")
}
