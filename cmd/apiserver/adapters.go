package main

import (
	"context"

	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/database/redis"
)

// redisHealthAdapter exposes the cache client to the readiness check.
type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string {
	return "redis"
}

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}
