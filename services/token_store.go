package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vendas-backend/models"
)

const revokedKeyPrefix = "jwt:blacklist:"

// TokenStore records revoked refresh token ids until they expire.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewTokenStore prefers Redis and uses the revoked_tokens table otherwise.
func NewTokenStore(db *gorm.DB, rdb *redis.Client) TokenStore {
	dbStore := &DBTokenStore{DB: db}
	if rdb == nil {
		return dbStore
	}
	return &RedisTokenStore{Client: rdb, Fallback: dbStore}
}

type DBTokenStore struct {
	DB *gorm.DB
}

func (s *DBTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	rec := models.RevokedToken{ID: jti, ExpiresAt: expiresAt, RevokedAt: time.Now()}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
}

func (s *DBTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.RevokedToken{}).Where("id = ?", jti).Count(&count).Error
	return count > 0, err
}

// Purge drops entries whose token has already expired.
func (s *DBTokenStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}

type RedisTokenStore struct {
	Client   *redis.Client
	Fallback TokenStore
}

func (s *RedisTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	err := s.Client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
	if err != nil && s.Fallback != nil {
		slog.Warn("redis revoke failed, writing to database", "error", err)
		return s.Fallback.Revoke(ctx, jti, expiresAt)
	}
	return err
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	res, err := s.Client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err == nil {
		if res > 0 {
			return true, nil
		}
		if s.Fallback == nil {
			return false, nil
		}
	} else {
		slog.Warn("redis lookup failed, checking database", "error", err)
		if s.Fallback == nil {
			return false, err
		}
	}
	return s.Fallback.IsRevoked(ctx, jti)
}
