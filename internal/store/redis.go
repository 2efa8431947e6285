// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"libris-cli/internal/config"
)

// ErrInvalidEvalArgs is returned when Eval is not given [body, numkeys, args...].
var ErrInvalidEvalArgs = errors.New("invalid eval arguments")

// Redis is a script store backed by a go-redis client.
type Redis struct {
	client *redis.Client

	// body -> *redis.Script, so the SHA1 of a body is computed once.
	scripts sync.Map
}

// New creates a Redis store from configuration.
func New(cfg config.RedisConfig) *Redis {
	return NewFromClient(redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	}))
}

// NewFromClient wraps an existing client. Closing the store closes the client.
func NewFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Client returns the underlying go-redis client.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Do sends a raw command and returns the server's reply.
func (r *Redis) Do(ctx context.Context, args ...any) (any, error) {
	return r.client.Do(ctx, args...).Result()
}

// Eval evaluates [body, numkeys, args...]. The first numkeys arguments become
// KEYS and the rest ARGV. The script is invoked by hash and re-sent in full
// only if the server does not have it cached.
func (r *Redis) Eval(ctx context.Context, args ...any) (any, error) {
	body, keys, argv, err := splitEvalArgs(args)
	if err != nil {
		return nil, err
	}
	return r.script(body).Run(ctx, r.client, keys, argv...).Result()
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) script(body string) *redis.Script {
	if s, ok := r.scripts.Load(body); ok {
		return s.(*redis.Script)
	}
	s, _ := r.scripts.LoadOrStore(body, redis.NewScript(body))
	return s.(*redis.Script)
}

func splitEvalArgs(args []any) (body string, keys []string, argv []any, err error) {
	if len(args) < 2 {
		return "", nil, nil, fmt.Errorf("%w: want [body, numkeys, args...], got %d values", ErrInvalidEvalArgs, len(args))
	}

	body, ok := args[0].(string)
	if !ok {
		return "", nil, nil, fmt.Errorf("%w: script body is %T, want string", ErrInvalidEvalArgs, args[0])
	}

	numKeys, err := toInt(args[1])
	if err != nil {
		return "", nil, nil, err
	}
	rest := args[2:]
	if numKeys < 0 || numKeys > len(rest) {
		return "", nil, nil, fmt.Errorf("%w: numkeys %d out of range for %d arguments", ErrInvalidEvalArgs, numKeys, len(rest))
	}

	keys = make([]string, numKeys)
	for i, v := range rest[:numKeys] {
		keys[i] = toKey(v)
	}
	return body, keys, rest[numKeys:], nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: numkeys %q is not an integer", ErrInvalidEvalArgs, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: numkeys is %T, want integer", ErrInvalidEvalArgs, v)
	}
}

// toKey renders a scalar the way the Redis protocol writer does.
func toKey(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case int32:
		return strconv.FormatInt(int64(k), 10)
	case uint64:
		return strconv.FormatUint(k, 10)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(k), 'f', -1, 32)
	case bool:
		if k {
			return "1"
		}
		return "0"
	case fmt.Stringer:
		return k.String()
	default:
		return fmt.Sprint(k)
	}
}
