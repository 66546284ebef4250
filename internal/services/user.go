package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"flirtquest/internal/datastore"
	"flirtquest/internal/datastore/redis_store"
	"flirtquest/internal/models"
	"flirtquest/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

type ServiceUser struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	authentication *Authentication
	serviceConfig  *ServiceConfig
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
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

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	authentication, err := do.Invoke[*Authentication](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, redisDB, postgresDB, readonlyPostgresDB, cache, readonlyCache, authentication, serviceConfig}, nil
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (service *ServiceUser) Register(ctx context.Context, input *RegisterInput) (*models.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, errorx.Wrap(errors.New("invalid email"), errorx.Validation)
	}
	if len(input.Password) < 8 {
		return nil, nil, errorx.Wrap(errors.New("password too short"), errorx.Validation)
	}

	existing, err := datastore.FindUserByEmail(ctx, service.readonlyPostgresDB, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}
	if existing != nil {
		return nil, nil, errorx.Wrap(ErrEmailTaken, errorx.Invalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		AuthProvider: models.AuthProviderEmail,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return err
		}
		sub := &models.Subscription{
			UserID:    user.ID,
			Plan:      models.PlanFree,
			Status:    models.SubscriptionActive,
			StartDate: time.Now(),
			UpdatedAt: time.Now(),
		}
		if _, err := tx.NewInsert().Model(sub).Exec(ctx); err != nil {
			return err
		}
		stats := &models.UserStats{UserID: user.ID, UpdatedAt: time.Now()}
		if _, err := tx.NewInsert().Model(stats).Exec(ctx); err != nil {
			return err
		}
		persona := &models.Persona{
			UserID:      user.ID,
			Name:        "Sofia",
			Personality: models.PersonalityPlayful,
			Interests:   []string{"música", "cinema"},
			UpdatedAt:   time.Now(),
		}
		if _, err := tx.NewInsert().Model(persona).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	tokens, err := service.authentication.CreateTokenPair(user)
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	user.IsNewUser = true
	return user, tokens, nil
}

func (service *ServiceUser) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := datastore.FindUserByEmail(ctx, service.postgresDB, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, errorx.Wrap(ErrInvalidCredentials, errorx.Authn)
		}
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	if !user.IsActive {
		return nil, nil, errorx.Wrap(ErrInactiveUser, errorx.Authn)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, nil, errorx.Wrap(ErrInvalidCredentials, errorx.Authn)
	}

	_ = datastore.UpdateUserLastLogin(ctx, service.postgresDB, user.ID, time.Now())

	tokens, err := service.authentication.CreateTokenPair(user)
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	return user, tokens, nil
}

func (service *ServiceUser) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userAuth, err := service.authentication.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Authn)
	}

	revoked, err := redis_store.IsTokenRevoked(ctx, service.redisDB, refreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if revoked {
		return nil, errorx.Wrap(ErrTokenRevoked, errorx.Authn)
	}

	user, err := service.FindUserByID(ctx, userAuth.ID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errorx.Wrap(ErrInactiveUser, errorx.Authn)
	}

	tokens, err := service.authentication.CreateTokenPair(user)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return tokens, nil
}

// Logout denylists the refresh token for the rest of its lifetime. An
// expired or malformed token is already unusable, so that case succeeds too.
func (service *ServiceUser) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	_, err := service.authentication.ValidateRefresh(refreshToken)
	if err != nil {
		return nil
	}

	err = redis_store.RevokeToken(ctx, service.redisDB, refreshToken, REFRESH_TOKEN_TTL)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}
	return nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
	}

	user, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUser(userID), CACHE_TTL_5_MINS, callback)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("user not found"), errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return user, nil
}

// Me hydrates the user with subscription and persona for the profile screen.
func (service *ServiceUser) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := service.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub, err := datastore.FindSubscriptionByUserID(ctx, service.readonlyPostgresDB, userID)
	if err == nil {
		user.Subscription = sub
	}

	persona, err := datastore.FindPersonaByUserID(ctx, service.readonlyPostgresDB, userID)
	if err == nil {
		user.Persona = persona
	}

	return user, nil
}

type UpdateProfileInput struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      *string    `json:"gender"`
	PhoneNumber *string    `json:"phone_number"`
	PhotoURL    *string    `json:"photo_url"`
}

func (service *ServiceUser) UpdateProfile(ctx context.Context, userID string, input *UpdateProfileInput) (*models.User, error) {
	user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.PhotoURL != nil {
		user.PhotoURL = input.PhotoURL
	}

	_, err = datastore.UpdateUserProfile(ctx, service.postgresDB, user)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyUser(userID))
	_ = service.cache.Delete(ctx, DBKeyMe(userID))

	return user, nil
}

func (service *ServiceUser) UpsertPersona(ctx context.Context, userID string, persona *models.Persona) (*models.Persona, error) {
	switch persona.Personality {
	case models.PersonalityPlayful, models.PersonalityRomantic, models.PersonalityConfident:
	default:
		return nil, errorx.Wrap(errors.New("invalid personality"), errorx.Validation)
	}

	persona.UserID = userID
	result, err := datastore.UpsertPersona(ctx, service.postgresDB, persona)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyMe(userID))
	return result, nil
}

func (service *ServiceUser) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := datastore.FindSubscriptionByUserID(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("subscription not found"), errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return sub, nil
}

func (service *ServiceUser) Deactivate(ctx context.Context, userID string) error {
	err := datastore.DeactivateUser(ctx, service.postgresDB, userID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyUser(userID))
	_ = service.cache.Delete(ctx, DBKeyMe(userID))
	return nil
}
