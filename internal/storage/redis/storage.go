package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/storage"
)

// Storage is a Redis-backed implementation of the match-history store.
// Each seed maps to a list of JSON records, newest first.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) SaveMatch(ctx context.Context, record *model.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := historyKey(record.Seed)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.cfg.MaxRecordsPerSeed)-1)
	if s.cfg.HistoryTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.HistoryTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) MatchesForSeed(ctx context.Context, seed model.Seed) ([]model.MatchRecord, error) {
	entries, err := s.client.LRange(ctx, historyKey(seed), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, model.ErrHistoryNotFound
	}

	records := make([]model.MatchRecord, 0, len(entries))
	for _, entry := range entries {
		var record model.MatchRecord
		if err := json.Unmarshal([]byte(entry), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
