package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/config"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/models"

	"github.com/go-redis/redis/v8"
)

// ErrSnapshotNotFound is returned when a logical source has no snapshot in the
// realtime store. The sync pipeline skips such sources.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// snapshotTTL bounds how long a stale snapshot survives a silent device.
const snapshotTTL = 24 * time.Hour

// RedisClient is the realtime store client. It holds the latest known value
// per logical source: room nodes, the power meter, and relays.
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: rdb,
		ctx:    ctx,
	}, nil
}

func roomKey(roomID string) string {
	return fmt.Sprintf("room:state:%s", roomID)
}

func meterKey(meterID string) string {
	return fmt.Sprintf("meter:state:%s", meterID)
}

func relayKey(relayID string) string {
	return fmt.Sprintf("relay:state:%s", relayID)
}

// SaveRoomSnapshot stores the latest room node state.
func (r *RedisClient) SaveRoomSnapshot(roomID string, snapshot *models.RoomSnapshot) error {
	return r.save(roomKey(roomID), snapshot)
}

// GetRoomSnapshot retrieves the latest room node state.
func (r *RedisClient) GetRoomSnapshot(roomID string) (*models.RoomSnapshot, error) {
	var snapshot models.RoomSnapshot
	if err := r.load(roomKey(roomID), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SavePowerSnapshot stores the latest power meter state.
func (r *RedisClient) SavePowerSnapshot(meterID string, snapshot *models.PowerSnapshot) error {
	return r.save(meterKey(meterID), snapshot)
}

// GetPowerSnapshot retrieves the latest power meter state.
func (r *RedisClient) GetPowerSnapshot(meterID string) (*models.PowerSnapshot, error) {
	var snapshot models.PowerSnapshot
	if err := r.load(meterKey(meterID), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SaveRelayCommand stores the desired relay state. This is the actuation
// signal consumed by the hardware side.
func (r *RedisClient) SaveRelayCommand(cmd *models.RelayCommand) error {
	return r.save(relayKey(cmd.RelayID), cmd)
}

// GetRelayCommand retrieves the last relay command written for a relay.
func (r *RedisClient) GetRelayCommand(relayID string) (*models.RelayCommand, error) {
	var cmd models.RelayCommand
	if err := r.load(relayKey(relayID), &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}

// Ping verifies the realtime store is reachable.
func (r *RedisClient) Ping() error {
	if _, err := r.client.Ping(r.ctx).Result(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) save(key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := r.client.Set(r.ctx, key, payload, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save %s to Redis: %w", key, err)
	}
	return nil
}

func (r *RedisClient) load(key string, out interface{}) error {
	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("%s: %w", key, ErrSnapshotNotFound)
		}
		return fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}
