package historystore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"marketcolor/internal/domain"
)

// DefaultRedisKey holds the single history record.
const DefaultRedisKey = "marketcolor:history:last"

// RedisStore keeps the history record under one key. SET replaces the value
// wholesale.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

func NewRedisStore(client *redis.Client, key string, logger *slog.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// NewRedisClient builds the client used by the store.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

var _ domain.HistoryStore = (*RedisStore)(nil)

// Load returns the zero record when the key is absent, malformed or Redis is
// unreachable.
func (s *RedisStore) Load(ctx context.Context) domain.HistoryRecord {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.InfoContext(ctx, "history_not_found", slog.String("key", s.key))
		} else {
			s.logger.WarnContext(ctx, "history_read_failed", slog.String("key", s.key), slog.String("error", err.Error()))
		}
		return domain.HistoryRecord{}
	}
	return decodeRecord(ctx, s.logger, data, s.key)
}

func (s *RedisStore) Save(ctx context.Context, record domain.HistoryRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set history: %w", err)
	}
	s.logger.InfoContext(ctx, "history_saved",
		slog.String("key", s.key),
		slog.Int("headlines", len(record.Headlines)),
		slog.Int("tickers", len(record.Tickers)))
	return nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
