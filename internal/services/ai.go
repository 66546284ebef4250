package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"time"

	"flirtquest/internal/datastore/redis_store"
	"flirtquest/internal/models"

	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

const (
	aiRequestTimeout = 20 * time.Second
	aiRetryCount     = 2
)

// canned replies per personality, used when the upstream model is down or
// not configured
var fallbackReplies = map[string][]string{
	models.PersonalityPlayful: {
		"Haha, boa! Me conta mais, estou curiosa 😄",
		"Adorei isso! E o que mais você aprontou hoje?",
		"Você tem um jeito divertido de falar, sabia?",
	},
	models.PersonalityRomantic: {
		"Que mensagem linda... me conta mais sobre você 💕",
		"Adoro quando você fala assim, continua.",
		"Você sabe mesmo como deixar uma conversa especial.",
	},
	models.PersonalityConfident: {
		"Gostei da sua atitude. O que vem depois?",
		"Direto ao ponto, do jeito que eu gosto. Continua.",
		"Boa! Agora me surpreende de novo.",
	},
}

// flirting advice tiers keyed by level band, served when the upstream model
// cannot be reached
var beginnerAdvice = []string{
	"Comece com um sorriso genuíno - é a forma universal de mostrar interesse! 😊",
	"Faça perguntas abertas sobre os interesses da pessoa. Mostre curiosidade genuína! 🤔",
	"Pratique escuta ativa - preste atenção no que a pessoa está dizendo realmente.",
}

var intermediateAdvice = []string{
	"Tente usar o 'eco emocional' - reflita os sentimentos que a pessoa expressa. 💭",
	"Compartilhe uma história pessoal leve para criar conexão. Vulnerabilidade controlada funciona!",
	"Use o humor situacional - comente algo engraçado do ambiente ao redor. 😄",
}

var advancedAdvice = []string{
	"Experimente a técnica do 'callback' - faça referência a algo mencionado anteriormente na conversa. 🔄",
	"Pratique leitura de linguagem corporal e espelhamento sutil. 👥",
	"Crie momentos de conexão através de pausas estratégicas e contato visual. 👀",
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// ModerationResult reports whether a message may proceed; Reason is only set
// when it may not.
type ModerationResult struct {
	Safe   bool
	Reason string
}

type ServiceAI struct {
	container *do.Injector
	redisDB   redis.UniversalClient
	client    *httpclient.Client

	serviceConfig *ServiceConfig
	baseURL       string
	apiKey        string
}

func NewServiceAI(container *do.Injector, baseURL, apiKey string) (*ServiceAI, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(aiRequestTimeout),
		httpclient.WithRetryCount(aiRetryCount),
	)

	return &ServiceAI{container, redisDB, client, serviceConfig, strings.TrimSuffix(baseURL, "/"), apiKey}, nil
}

// GenerateReply builds the coach reply for one user message. On any upstream
// failure it degrades to a canned reply so the interaction flow never blocks
// on the model.
func (service *ServiceAI) GenerateReply(ctx context.Context, userID, content string, persona *models.Persona) string {
	reply, err := service.complete(ctx, userID, content, persona)
	if err != nil {
		reply = service.fallbackReply(persona)
	}

	//nolint:errcheck
	redis_store.PushConversationTurn(ctx, service.redisDB, userID, &redis_store.ConversationTurn{
		Role:      "user",
		Content:   content,
		CreatedAt: time.Now(),
	})
	//nolint:errcheck
	redis_store.PushConversationTurn(ctx, service.redisDB, userID, &redis_store.ConversationTurn{
		Role:      "assistant",
		Content:   reply,
		CreatedAt: time.Now(),
	})

	return reply
}

// Moderate asks the upstream moderation endpoint about one message. Any
// failure, including a missing upstream, counts as safe so the interaction
// flow keeps working without the model.
func (service *ServiceAI) Moderate(ctx context.Context, content string) ModerationResult {
	if service.baseURL == "" || service.apiKey == "" {
		return ModerationResult{Safe: true}
	}

	body, err := json.Marshal(moderationRequest{Input: content})
	if err != nil {
		return ModerationResult{Safe: true}
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Bearer "+service.apiKey)

	res, err := service.client.Post(service.baseURL+"/moderations", bytes.NewReader(body), headers)
	if err != nil {
		return ModerationResult{Safe: true}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return ModerationResult{Safe: true}
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return ModerationResult{Safe: true}
	}

	var parsed moderationResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Results) == 0 {
		return ModerationResult{Safe: true}
	}

	result := parsed.Results[0]
	if !result.Flagged {
		return ModerationResult{Safe: true}
	}

	var categories []string
	for category, flagged := range result.Categories {
		if flagged {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	return ModerationResult{Safe: false, Reason: "conteúdo sinalizado: " + strings.Join(categories, ", ")}
}

// Advice picks a flirting tip for the user's level band.
func (service *ServiceAI) Advice(level int) string {
	switch {
	case level <= 2:
		return beginnerAdvice[rand.Intn(len(beginnerAdvice))]
	case level <= 5:
		return intermediateAdvice[rand.Intn(len(intermediateAdvice))]
	default:
		return advancedAdvice[rand.Intn(len(advancedAdvice))]
	}
}

func (service *ServiceAI) complete(ctx context.Context, userID, content string, persona *models.Persona) (string, error) {
	if service.baseURL == "" || service.apiKey == "" {
		return "", errors.New("ai upstream not configured")
	}

	model, _ := service.serviceConfig.GetStringConfig(ctx, CONFIG_AI_MODEL, "gpt-4o-mini")
	maxTokens, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_AI_MAX_TOKENS, 300)

	messages := []chatMessage{{Role: "system", Content: systemPrompt(persona)}}

	history, err := redis_store.GetConversationHistory(ctx, service.redisDB, userID)
	if err == nil {
		for _, turn := range history {
			messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
		}
	}
	messages = append(messages, chatMessage{Role: "user", Content: content})

	body, err := json.Marshal(chatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Bearer "+service.apiKey)

	res, err := service.client.Post(service.baseURL+"/chat/completions", bytes.NewReader(body), headers)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai upstream status %d", res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var parsed chatCompletionResponse
	err = json.Unmarshal(raw, &parsed)
	if err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("empty completion")
	}

	reply := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("blank completion")
	}

	return reply, nil
}

func (service *ServiceAI) fallbackReply(persona *models.Persona) string {
	personality := models.PersonalityPlayful
	if persona != nil && persona.Personality != "" {
		personality = persona.Personality
	}

	replies, ok := fallbackReplies[personality]
	if !ok {
		replies = fallbackReplies[models.PersonalityPlayful]
	}

	return replies[rand.Intn(len(replies))]
}

func systemPrompt(persona *models.Persona) string {
	name := "Sofia"
	personality := models.PersonalityPlayful
	style := "casual"
	length := "medium"
	interests := "conversas, música, viagens"

	if persona != nil {
		if persona.Name != "" {
			name = persona.Name
		}
		if persona.Personality != "" {
			personality = persona.Personality
		}
		if persona.CommunicationStyle != "" {
			style = persona.CommunicationStyle
		}
		if persona.ResponseLength != "" {
			length = persona.ResponseLength
		}
		if len(persona.Interests) > 0 {
			interests = strings.Join(persona.Interests, ", ")
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Você é %s, uma parceira de conversa que ajuda o usuário a treinar habilidades sociais e de flerte.\n", name)
	fmt.Fprintf(&b, "Personalidade: %s. Estilo: %s. Comprimento das respostas: %s.\n", strings.ToLower(personality), style, length)
	fmt.Fprintf(&b, "Interesses: %s.\n", interests)
	b.WriteString("Responda sempre em português, mantenha o tom leve e encoraje o usuário a continuar a conversa.")
	return b.String()
}
