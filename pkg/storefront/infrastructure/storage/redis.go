package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"storefront/pkg/storefront/domain/model"
)

const cartKeyPrefix = "storefront:cart:"

// RedisCartStore keeps one cart snapshot per session key. Every write
// replaces the whole value, mirroring the snapshot-only contract of
// the cart store.
type RedisCartStore struct {
	client  *redis.Client
	session string
}

func NewRedisCartStore(client *redis.Client, sessionID string) *RedisCartStore {
	return &RedisCartStore{client: client, session: sessionID}
}

func (s *RedisCartStore) key() string {
	return cartKeyPrefix + s.session
}

func (s *RedisCartStore) Load() ([]model.CartLine, error) {
	payload, err := s.client.Get(context.Background(), s.key()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load cart snapshot")
	}
	var lines []model.CartLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, errors.Wrap(err, "decode cart snapshot")
	}
	return lines, nil
}

func (s *RedisCartStore) Save(lines []model.CartLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return errors.Wrap(err, "encode cart snapshot")
	}
	if err := s.client.Set(context.Background(), s.key(), payload, 0).Err(); err != nil {
		return errors.Wrap(err, "save cart snapshot")
	}
	return nil
}

func (s *RedisCartStore) Clear() error {
	if err := s.client.Del(context.Background(), s.key()).Err(); err != nil {
		return errors.Wrap(err, "clear cart snapshot")
	}
	return nil
}
