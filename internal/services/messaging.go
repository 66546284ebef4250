package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"flirtquest/internal/models"

	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const whatsappRequestTimeout = 10 * time.Second

type ServiceMessaging struct {
	container  *do.Injector
	postgresDB *bun.DB
	client     *httpclient.Client

	serviceInteraction *ServiceInteraction

	apiURL      string
	accessToken string
	verifyToken string
}

func NewServiceMessaging(container *do.Injector, apiURL, accessToken, verifyToken string) (*ServiceMessaging, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	serviceInteraction, err := do.Invoke[*ServiceInteraction](container)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(whatsappRequestTimeout),
		httpclient.WithRetryCount(1),
	)

	return &ServiceMessaging{container, postgresDB, client, serviceInteraction, apiURL, accessToken, verifyToken}, nil
}

// VerifyWebhook answers the hub challenge handshake.
func (service *ServiceMessaging) VerifyWebhook(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != service.verifyToken {
		return "", errorx.Wrap(errors.New("webhook verification failed"), errorx.Authn)
	}
	return challenge, nil
}

type WebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
					Type string `json:"type"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// HandleInbound routes each text message through the interaction pipeline and
// sends the coach reply back over the same channel. Messages from unknown
// numbers are dropped.
func (service *ServiceMessaging) HandleInbound(ctx context.Context, payload *WebhookPayload) error {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, message := range change.Value.Messages {
				if message.Type != "text" || message.Text.Body == "" {
					continue
				}

				user, err := service.findUserByPhone(ctx, message.From)
				if err != nil {
					continue
				}

				result, err := service.serviceInteraction.Submit(ctx, user, &SubmitInteractionInput{
					Content: message.Text.Body,
					Type:    models.InteractionText,
					Channel: models.ChannelWhatsApp,
				})
				if err != nil {
					continue
				}

				//nolint:errcheck
				service.SendText(ctx, message.From, result.Reply)
			}
		}
	}

	return nil
}

func (service *ServiceMessaging) SendText(ctx context.Context, to, text string) error {
	if service.apiURL == "" || service.accessToken == "" {
		return errors.New("whatsapp upstream not configured")
	}

	body, err := json.Marshal(map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": text},
	})
	if err != nil {
		return err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Bearer "+service.accessToken)

	res, err := service.client.Post(service.apiURL+"/messages", bytes.NewReader(body), headers)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("whatsapp upstream status %d", res.StatusCode)
	}

	return nil
}

func (service *ServiceMessaging) findUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := service.postgresDB.NewSelect().Model(&user).
		Where("phone_number = ?", phone).
		Where("is_active = true").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("unknown sender"), errorx.NotExist)
		}
		return nil, err
	}
	return &user, nil
}
