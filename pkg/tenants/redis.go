package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tenant:"

// RedisStore keeps each tenant as a JSON record at tenant:<client_id>.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

type redisRecord struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	HashedSecret string `json:"hashed_client_secret"`
	BackendURL   string `json:"backend_url"`
	Metadata     string `json:"metadata"`
	IsDisabled   bool   `json:"is_disabled"`
}

func redisKey(clientID string) string { return redisKeyPrefix + clientID }

func (s *RedisStore) FindByClientID(ctx context.Context, clientID string) (Tenant, error) {
	b, err := s.rdb.Get(ctx, redisKey(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, fmt.Errorf("redis get tenant: %w", err)
	}
	var rec redisRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return Tenant{}, fmt.Errorf("decode tenant record: %w", err)
	}
	return Tenant(rec), nil
}

func (s *RedisStore) Upsert(ctx context.Context, t Tenant) error {
	prev, err := s.FindByClientID(ctx, t.ClientID)
	switch {
	case err == nil:
		t.ID = prev.ID
	case !errors.Is(err, ErrNotFound):
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	b, err := json.Marshal(redisRecord(t))
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKey(t.ClientID), b, 0).Err(); err != nil {
		return fmt.Errorf("redis set tenant %s: %w", t.ClientID, err)
	}
	return nil
}
