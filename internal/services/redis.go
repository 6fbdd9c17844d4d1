package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guzobus/guzo-backend/internal/models"
)

var RedisClient *redis.Client

const (
	// tripCacheTTL keeps cached trips short-lived; seat state changes
	// invalidate eagerly, the TTL only covers missed invalidations.
	tripCacheTTL = 30 * time.Second

	seatUpdateChannel = "trip:seat:updates"
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	RedisClient = client
	return nil
}

// RedisEnabled reports whether caching and pub/sub are available. The API
// serves fine without Redis; callers skip these paths when it is down.
func RedisEnabled() bool {
	return RedisClient != nil
}

// CacheTrip stores a trip snapshot in Redis
func CacheTrip(ctx context.Context, trip *models.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("trip:%d", trip.ID)
	return RedisClient.Set(ctx, key, data, tripCacheTTL).Err()
}

// GetCachedTrip retrieves a trip snapshot from Redis. A cache miss returns
// (nil, nil).
func GetCachedTrip(ctx context.Context, tripID uint) (*models.Trip, error) {
	key := fmt.Sprintf("trip:%d", tripID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trip models.Trip
	if err := json.Unmarshal([]byte(data), &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// InvalidateTripCache drops the cached snapshot after a seat mutation
func InvalidateTripCache(ctx context.Context, tripID uint) error {
	key := fmt.Sprintf("trip:%d", tripID)
	return RedisClient.Del(ctx, key).Err()
}

// SeatUpdate is the seat-availability event published after a committed
// reservation or cancellation.
type SeatUpdate struct {
	TripID         uint          `json:"tripId"`
	AvailableSeats int           `json:"availableSeats"`
	Seats          []models.Seat `json:"seats"`
	Timestamp      int64         `json:"timestamp"`
}

// PublishSeatUpdate publishes a trip's new seat state to Redis pub/sub
func PublishSeatUpdate(ctx context.Context, trip *models.Trip) error {
	update := SeatUpdate{
		TripID:         trip.ID,
		AvailableSeats: trip.AvailableSeats,
		Seats:          trip.SeatSnapshot(),
		Timestamp:      time.Now().Unix(),
	}

	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return RedisClient.Publish(ctx, seatUpdateChannel, data).Err()
}

// RunSeatUpdateRelay subscribes to seat updates and forwards them to the
// WebSocket hub so every API instance notifies its own clients. Blocks
// until ctx is cancelled.
func RunSeatUpdateRelay(ctx context.Context, hub *Hub) {
	sub := RedisClient.Subscribe(ctx, seatUpdateChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var update SeatUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				log.Printf("Error unmarshaling seat update: %v", err)
				continue
			}
			hub.SendSeatUpdate(update)
		}
	}
}
