package storage

import (
	"context"
	"fmt"
)

const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Options struct {
	Backend       string
	FilePath      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// NewSink builds the sink named by opts.Backend. An empty backend means
// no persistence.
func NewSink(ctx context.Context, opts Options) (Sink, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NoopSink{}, nil
	case BackendFile:
		return NewFileSink(opts.FilePath)
	case BackendRedis:
		return NewRedisSink(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisKey)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", opts.Backend)
	}
}
