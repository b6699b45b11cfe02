package repertoire

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-cinema/internal/models"
)

// ScreeningCache keeps rendered screening details (including the seat map) in
// Redis so repertoire browsing does not hit the database on every request.
// Entries are invalidated whenever a reservation changes seat occupancy.
type ScreeningCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewScreeningCache(client *redis.Client, ttl time.Duration) *ScreeningCache {
	return &ScreeningCache{Client: client, TTL: ttl}
}

func screeningKey(screeningID int64) string {
	return fmt.Sprintf("screening_details:%d", screeningID)
}

// Get returns the cached details for a screening, or (nil, nil) on a miss.
func (c *ScreeningCache) Get(ctx context.Context, screeningID int64) (*models.ScreeningDetails, error) {
	raw, err := c.Client.Get(ctx, screeningKey(screeningID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var details models.ScreeningDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *ScreeningCache) Set(ctx context.Context, screeningID int64, details *models.ScreeningDetails) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, screeningKey(screeningID), raw, c.TTL).Err()
}

// Invalidate drops a cached seat map after its occupancy changed.
func (c *ScreeningCache) Invalidate(ctx context.Context, screeningID int64) error {
	return c.Client.Del(ctx, screeningKey(screeningID)).Err()
}
