// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

// Package notify publishes profile-created events for the companion
// profile service. Delivery is fire-and-forget from the caller's point of
// view: the registration that triggered the event never fails or rolls
// back because of a publish failure.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ProfileCreationChannel is the pub/sub channel the profile service
// listens on.
const ProfileCreationChannel = "profile-creation"

// publish retry policy. This sits outside the authentication core's
// no-retry rule: the event is best effort and at-least-once.
const (
	publishRetries = 2
	publishBackoff = 100 * time.Millisecond
)

// profileCreatedEvent is the wire payload.
type profileCreatedEvent struct {
	PlayerID string `json:"playerId"`
}

// RedisPublisher publishes profile-created events over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher from a redis URL
// (redis://host:port/db).
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, oops.Code("NOTIFY_CONFIG_INVALID").
			With("operation", "parse redis url").
			Wrap(err)
	}
	return &RedisPublisher{client: redis.NewClient(opts)}, nil
}

// NewRedisPublisherFromClient wraps an existing client. Used by tests.
func NewRedisPublisherFromClient(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// PublishProfileCreated publishes {"playerId": ...} to the
// profile-creation channel, retrying transient failures a bounded number
// of times before giving up.
func (p *RedisPublisher) PublishProfileCreated(ctx context.Context, playerID ulid.ULID) error {
	payload, err := json.Marshal(profileCreatedEvent{PlayerID: playerID.String()})
	if err != nil {
		return oops.Code("NOTIFY_MARSHAL_FAILED").Wrap(err)
	}

	backoff := retry.WithMaxRetries(publishRetries, retry.NewExponential(publishBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pubErr := p.client.Publish(ctx, ProfileCreationChannel, payload).Err(); pubErr != nil {
			return retry.RetryableError(pubErr)
		}
		return nil
	})
	if err != nil {
		return oops.Code("NOTIFY_PUBLISH_FAILED").
			With("channel", ProfileCreationChannel).
			With("player_id", playerID.String()).
			Wrap(err)
	}
	return nil
}

// Close releases the underlying redis client.
func (p *RedisPublisher) Close() error {
	if err := p.client.Close(); err != nil {
		return oops.Code("NOTIFY_CLOSE_FAILED").Wrap(err)
	}
	return nil
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

// PublishProfileCreated does nothing.
func (NoopPublisher) PublishProfileCreated(context.Context, ulid.ULID) error {
	return nil
}
