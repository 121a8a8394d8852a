package tokenstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis"
)

const (
	authKeyPrefix   = "auth:"
	onlineKeyPrefix = "device:online:"
)

// RedisTokenStore keeps device auth tokens and presence flags in redis,
// shared with the gateway process.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// SaveToken implements device.TokenStore. Tokens do not expire; a device
// keeps its token until it re-registers.
func (s *RedisTokenStore) SaveToken(deviceID, token string) error {
	if err := s.client.Set(authKeyPrefix+deviceID, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to save token for %s: %w", deviceID, err)
	}
	return nil
}

// CheckToken implements device.TokenStore
func (s *RedisTokenStore) CheckToken(deviceID, token string) (bool, error) {
	stored, err := s.client.Get(authKeyPrefix + deviceID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token for %s: %w", deviceID, err)
	}
	return stored == token, nil
}

// SetOnline implements device.TokenStore. The flag carries a TTL so a dead
// device drops off the dashboard without explicit cleanup.
func (s *RedisTokenStore) SetOnline(deviceID string, ttl time.Duration) error {
	if err := s.client.Set(onlineKeyPrefix+deviceID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set presence for %s: %w", deviceID, err)
	}
	return nil
}

// IsOnline implements device.TokenStore
func (s *RedisTokenStore) IsOnline(deviceID string) (bool, error) {
	n, err := s.client.Exists(onlineKeyPrefix + deviceID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read presence for %s: %w", deviceID, err)
	}
	return n > 0, nil
}

// OnlineDevices implements device.TokenStore
func (s *RedisTokenStore) OnlineDevices() ([]string, error) {
	keys, err := s.client.Keys(onlineKeyPrefix + "*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan presence keys: %w", err)
	}
	devices := make([]string, 0, len(keys))
	for _, k := range keys {
		devices = append(devices, strings.TrimPrefix(k, onlineKeyPrefix))
	}
	return devices, nil
}
