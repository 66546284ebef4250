package services

import (
	"errors"
	"time"

	"flirtquest/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

type CustomClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Kind  string `json:"kind"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type Authentication struct {
	secret string
}

func NewAuthentication(secret string) (*Authentication, error) {
	if secret == "" {
		return nil, errors.New("empty jwt secret")
	}
	return &Authentication{secret}, nil
}

func (authentication *Authentication) CreateTokenPair(user *models.User) (*TokenPair, error) {
	access, err := authentication.sign(user, tokenKindAccess, ACCESS_TOKEN_TTL)
	if err != nil {
		return nil, err
	}

	refresh, err := authentication.sign(user, tokenKindRefresh, REFRESH_TOKEN_TTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(ACCESS_TOKEN_TTL.Seconds()),
	}, nil
}

func (authentication *Authentication) sign(user *models.User, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		ID:    user.ID,
		Email: user.Email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(authentication.secret))
}

func (authentication *Authentication) Validate(token string) (*models.UserFromAuth, error) {
	claims, err := authentication.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != tokenKindAccess {
		return nil, errors.New("not an access token")
	}

	return &models.UserFromAuth{ID: claims.ID, Email: claims.Email}, nil
}

func (authentication *Authentication) ValidateRefresh(token string) (*models.UserFromAuth, error) {
	claims, err := authentication.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != tokenKindRefresh {
		return nil, errors.New("not a refresh token")
	}

	return &models.UserFromAuth{ID: claims.ID, Email: claims.Email}, nil
}

func (authentication *Authentication) parse(token string) (*CustomClaims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(authentication.secret), nil
	}

	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok || !jwtToken.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
