package docstore

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var redisDocPrefix string = "doc/"

// Keeps the document as a single redis string value (no expiration).
type RedisDocStore struct {
	Client *redis.Client
	Key    string
}

var _ DocStore = (*RedisDocStore)(nil)

func NewRedisDocStore(redisURL, name string) (*RedisDocStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisDocStore{
		Client: rdb,
		Key:    redisDocPrefix + name,
	}, nil
}

func (s *RedisDocStore) Load(ctx context.Context) ([]byte, error) {
	b, err := s.Client.Get(ctx, s.Key).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *RedisDocStore) Save(ctx context.Context, doc []byte) error {
	return s.Client.Set(ctx, s.Key, doc, 0).Err()
}
