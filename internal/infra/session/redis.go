package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

const keyPrefix = "courts:session:"

// RedisStore хранит сессии в Redis как JSON с TTL, общий для всех инстансов сервиса
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get возвращает сессию или nil, если её нет или она истекла
func (s *RedisStore) Get(ctx context.Context, phone string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+phone).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrBackend, phone, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, phone, err)
	}
	return &sess, nil
}

// Set сохраняет сессию и продлевает TTL
func (s *RedisStore) Set(ctx context.Context, phone string, sess *domain.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, phone, err)
	}
	if err := s.client.Set(ctx, keyPrefix+phone, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrBackend, phone, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, keyPrefix+phone).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrBackend, phone, err)
	}
	return nil
}
