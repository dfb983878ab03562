package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"cvforge/internal/errors"
	"cvforge/internal/resume"
)

// DefaultRedisKey is where the single document lives when no key is
// configured.
const DefaultRedisKey = "cvforge:document"

// RedisStore keeps the document under one fixed key. It suits shared
// deployments where several instances serve the same profile; writes
// remain last-write-wins like the file backend.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *errors.Logger
}

func NewRedisStore(client *redis.Client, key string, logger *errors.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

func (s *RedisStore) Save(ctx context.Context, doc resume.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to write document to redis", err).
			WithContext("key", s.key)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (resume.Document, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return resume.NewDocument(), false, nil
	}
	if err != nil {
		return resume.NewDocument(), false,
			errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to read document from redis", err).
				WithContext("key", s.key)
	}

	doc, _ := decode(data, s.logger)
	return doc, resume.HasPriorWork(doc), nil
}

// Close releases the underlying client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
