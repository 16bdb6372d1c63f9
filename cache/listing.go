// Package cache keeps public event listings in Redis. Entries are
// addressed through a generation counter: bumping it orphans every cached
// listing at once, and orphans expire on their TTL.
package cache

import (
	"context"
	"encoding/json"
	"eventers-ticketing/model"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

const generationKey = "listings:generation"

type Listings struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListings(client *redis.Client, ttl time.Duration) *Listings {
	return &Listings{client: client, ttl: ttl}
}

// Get returns the cached listing for key, if present in the current
// generation, along with the generation it looked in.
func (l *Listings) Get(ctx context.Context, key string) ([]model.PublicEvent, int64, bool, error) {
	client := l.client.WithContext(ctx)

	gen, err := l.generation(client)
	if err != nil {
		return nil, 0, false, fmt.Errorf("get: %w", err)
	}

	raw, err := client.Get(listingKey(gen, key)).Bytes()
	if err == redis.Nil {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("get: unable to read listing %q: %w", key, err)
	}

	var events []model.PublicEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, gen, false, fmt.Errorf("get: corrupt listing %q: %w", key, err)
	}
	return events, gen, true, nil
}

// Set stores events under gen, the generation returned by the Get that
// preceded the store read. If an Invalidate happened in between, the
// entry lands in a dead generation and is never served.
func (l *Listings) Set(ctx context.Context, key string, gen int64, events []model.PublicEvent) error {
	client := l.client.WithContext(ctx)

	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("set: unable to encode listing %q: %w", key, err)
	}

	if err := client.Set(listingKey(gen, key), raw, l.ttl).Err(); err != nil {
		return fmt.Errorf("set: unable to save listing %q: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached listing.
func (l *Listings) Invalidate(ctx context.Context) error {
	if err := l.client.WithContext(ctx).Incr(generationKey).Err(); err != nil {
		return fmt.Errorf("invalidate: unable to bump listing generation: %w", err)
	}
	return nil
}

func (l *Listings) generation(client *redis.Client) (int64, error) {
	gen, err := client.Get(generationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("unable to read listing generation: %w", err)
	}
	return gen, nil
}

func listingKey(gen int64, key string) string {
	return fmt.Sprintf("listings:%d:%s", gen, key)
}
