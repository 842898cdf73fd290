package wordledb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strconv"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	"github.com/redis/go-redis/v9"
)

// upsertScript applies the earliest-wins rule server side.
// KEYS: values hash, timestamps hash, players set.
// ARGV: day key, candidate timestamp, encoded value, player id.
var upsertScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[2], ARGV[1])
if cur and tonumber(cur) <= tonumber(ARGV[2]) then
  return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
redis.call('SADD', KEYS[3], ARGV[4])
if cur then
  return 2
end
return 1
`)

// RedisRepository stores each player's partition as a pair of hashes keyed
// by encoded day.
type RedisRepository struct {
	client     *redis.Client
	prefix     string
	aofTimeout time.Duration
}

// RedisOption configures a RedisRepository.
type RedisOption func(*RedisRepository)

// WithAOFSync makes Flush wait up to timeout for the server to fsync its
// append-only file. Requires Redis 7.2+ with appendonly enabled.
func WithAOFSync(timeout time.Duration) RedisOption {
	return func(r *RedisRepository) {
		r.aofTimeout = timeout
	}
}

// NewRedisRepository connects to redisURL and verifies the connection.
func NewRedisRepository(redisURL, prefix string, opts ...RedisOption) (*RedisRepository, error) {
	clientOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(clientOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisRepositoryWithClient(client, prefix, opts...), nil
}

// NewRedisRepositoryWithClient wraps an existing client.
func NewRedisRepositoryWithClient(client *redis.Client, prefix string, opts ...RedisOption) *RedisRepository {
	if prefix == "" {
		prefix = "wordle"
	}
	r := &RedisRepository{client: client, prefix: prefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Repository = (*RedisRepository)(nil)

func (r *RedisRepository) playersKey() string { return r.prefix + ":players" }

func (r *RedisRepository) valuesKey(playerID string) string {
	return r.prefix + ":scores:" + playerID
}

func (r *RedisRepository) timestampsKey(playerID string) string {
	return r.prefix + ":ts:" + playerID
}

func (r *RedisRepository) EnsurePartition(ctx context.Context, playerID string) error {
	if err := r.client.SAdd(ctx, r.playersKey(), playerID).Err(); err != nil {
		return fmt.Errorf("ensure partition %q: %w", playerID, err)
	}
	return nil
}

func (r *RedisRepository) Upsert(ctx context.Context, playerID string, candidate wordledomain.TimestampedScore) (wordledomain.Outcome, error) {
	value, err := wordledomain.EncodeValue(candidate)
	if err != nil {
		return wordledomain.Unchanged, err
	}

	keys := []string{r.valuesKey(playerID), r.timestampsKey(playerID), r.playersKey()}
	res, err := upsertScript.Run(ctx, r.client, keys,
		string(wordledomain.DayKey(candidate.Score.Day)),
		strconv.FormatInt(candidate.Timestamp, 10),
		value,
		playerID,
	).Int()
	if err != nil {
		return wordledomain.Unchanged, fmt.Errorf("upsert score: %w", err)
	}

	switch res {
	case 1:
		return wordledomain.Inserted, nil
	case 2:
		return wordledomain.Replaced, nil
	default:
		return wordledomain.Unchanged, nil
	}
}

func (r *RedisRepository) Get(ctx context.Context, playerID string, day uint32) (*wordledomain.TimestampedScore, error) {
	raw, err := r.client.HGet(ctx, r.valuesKey(playerID), string(wordledomain.DayKey(day))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get score: %w", err)
	}

	ts, err := wordledomain.DecodeValue(raw)
	if err != nil {
		return nil, fmt.Errorf("player %q day %d: %w", playerID, day, err)
	}
	return &ts, nil
}

// Iter reads the whole partition with one HGETALL and decodes lazily in
// day order.
func (r *RedisRepository) Iter(ctx context.Context, playerID string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		all, err := r.client.HGetAll(ctx, r.valuesKey(playerID)).Result()
		if err != nil {
			yield(Entry{}, fmt.Errorf("iterate scores: %w", err))
			return
		}

		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			day, err := wordledomain.ParseDayKey([]byte(k))
			if err != nil {
				yield(Entry{}, fmt.Errorf("player %q: %w", playerID, err))
				return
			}
			ts, err := wordledomain.DecodeValue([]byte(all[k]))
			if err != nil {
				yield(Entry{}, fmt.Errorf("player %q day %d: %w", playerID, day, err))
				return
			}
			if !yield(Entry{Day: day, Score: ts}, nil) {
				return
			}
		}
	}
}

func (r *RedisRepository) IsEmpty(ctx context.Context, playerID string) (bool, error) {
	n, err := r.client.HLen(ctx, r.valuesKey(playerID)).Result()
	if err != nil {
		return false, fmt.Errorf("check scores: %w", err)
	}
	return n == 0, nil
}

func (r *RedisRepository) Players(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.playersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Flush without WithAOFSync only waits for a round trip. Earlier writes have
// been applied, but the engine makes no on-disk guarantee; durability follows
// the server's persistence settings. With WithAOFSync it blocks on WAITAOF
// until the local append-only file holds every earlier write.
func (r *RedisRepository) Flush(ctx context.Context) error {
	if r.aofTimeout <= 0 {
		return r.Ping(ctx)
	}

	acks, err := r.client.Do(ctx, "WAITAOF", 1, 0, r.aofTimeout.Milliseconds()).Int64Slice()
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if len(acks) == 0 || acks[0] < 1 {
		return fmt.Errorf("flush: append-only file not synced within %s", r.aofTimeout)
	}
	return nil
}

// Ping checks the connection.
func (r *RedisRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the client.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
