package storage

import (
	"context"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/format"
)

// Redis key layout.
const (
	redisKeyPrefix = "mindtree:map:"
	redisIndexKey  = "mindtree:maps"
)

// RedisStore keeps each envelope under mindtree:map:<id> and the set of ids
// under mindtree:maps.
type RedisStore struct {
	client *redis.Client
	owned  bool
}

// NewRedisStore connects to url (redis://...) and pings the server.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "connect to redis")
	}
	return &RedisStore{client: client, owned: true}, nil
}

// NewRedisStoreFromClient wraps an existing client. Close leaves it open.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*format.Document, error) {
	if err := mterrors.ValidateMapID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "get map %q", id)
	}
	return format.UnmarshalDocument(data)
}

func (s *RedisStore) Put(ctx context.Context, id string, doc *format.Document) error {
	if err := mterrors.ValidateMapID(id); err != nil {
		return err
	}
	if err := checkDoc(doc); err != nil {
		return err
	}
	data, err := format.MarshalDocument(doc)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, redisKey(id), data, 0)
		p.SAdd(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return mterrors.Wrap(mterrors.ErrCodeNetwork, err, "put map %q", id)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := mterrors.ValidateMapID(id); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, redisKey(id))
		p.SRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return mterrors.Wrap(mterrors.ErrCodeNetwork, err, "delete map %q", id)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "list maps")
	}
	slices.Sort(ids)
	return ids, nil
}

// Close closes the client if the store created it.
func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
