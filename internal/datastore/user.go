package datastore

import (
	"context"
	"strings"
	"time"

	"flirtquest/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_app_user_email").IfNotExists().Unique().Column("email").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_app_user_is_active").IfNotExists().Column("is_active").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db *bun.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(ctx context.Context, db *bun.DB, email string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("email = ?", strings.ToLower(email)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func EditUser(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()
	_, err := db.NewUpdate().Model(user).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func UpdateUserProfile(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	_, err := db.NewUpdate().Model(user).
		Set("first_name = ?", user.FirstName).
		Set("last_name = ?", user.LastName).
		Set("date_of_birth = ?", user.DateOfBirth).
		Set("gender = ?", user.Gender).
		Set("phone_number = ?", user.PhoneNumber).
		Set("photo_url = ?", user.PhotoURL).
		Set("updated_at = current_timestamp").
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func UpdateUserLastLogin(ctx context.Context, db *bun.DB, userID string, at time.Time) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("last_login_at = ?", at).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func MarkUserEmailVerified(ctx context.Context, db *bun.DB, userID string) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("email_verified = true").
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func DeactivateUser(ctx context.Context, db *bun.DB, userID string) error {
	_, err := db.NewUpdate().
		Model((*models.User)(nil)).
		Set("is_active = false").
		Set("updated_at = current_timestamp").
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func CountUsers(ctx context.Context, db *bun.DB) (int, error) {
	count, err := db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func GetUsersByIDs(ctx context.Context, db *bun.DB, userIDs []string) ([]*models.User, error) {
	var users []*models.User
	if len(userIDs) == 0 {
		return users, nil
	}
	err := db.NewSelect().Model(&users).Where("id IN (?)", bun.In(userIDs)).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func GetUsersByLimit(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Order("created_at ASC").Limit(limit).Offset(offset).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}
