package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotHeld is returned when another request currently holds the slot
var ErrSlotHeld = errors.New("slot is currently being booked")

// releaseHoldScript deletes the hold only when the caller still owns it.
// Redis Go client automatically uses EVALSHA after the first call,
// so concurrent releases stay cheap.
var releaseHoldScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	// Redis key prefix for slot holds
	slotHoldKeyPrefix = "booking:hold:"

	// Timeout for individual Redis operations
	slotHoldTimeout = 5 * time.Second
)

// SlotHolder serializes concurrent booking attempts on the same slot.
// The hold is a fast-path guard only; the partial unique index on
// appointments remains the authoritative exclusivity check.
type SlotHolder interface {
	Acquire(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (string, error)
	Release(ctx context.Context, doctorID uuid.UUID, date, timeOfDay, token string) error
}

type SlotHoldService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewSlotHoldService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *SlotHoldService {
	return &SlotHoldService{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

func slotHoldKey(doctorID uuid.UUID, date, timeOfDay string) string {
	return fmt.Sprintf("%s%s:%s:%s", slotHoldKeyPrefix, doctorID, date, timeOfDay)
}

// Acquire takes a short-TTL NX hold on the slot key and returns an
// ownership token. ErrSlotHeld means another booking for the same slot
// is in flight and the caller should fail fast with a conflict.
func (s *SlotHoldService) Acquire(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (string, error) {
	token := uuid.New().String()
	key := slotHoldKey(doctorID, date, timeOfDay)

	ok, err := s.redisClient.SetNX(ctx, key, token, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire slot hold: %w", err)
	}
	if !ok {
		return "", ErrSlotHeld
	}

	return token, nil
}

// Release drops the hold if the token still owns it. An expired or
// stolen hold is not an error; the TTL already reclaimed it.
func (s *SlotHoldService) Release(ctx context.Context, doctorID uuid.UUID, date, timeOfDay, token string) error {
	key := slotHoldKey(doctorID, date, timeOfDay)

	opCtx, cancel := context.WithTimeout(ctx, slotHoldTimeout)
	defer cancel()

	released, err := releaseHoldScript.Run(opCtx, s.redisClient, []string{key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release slot hold: %w", err)
	}
	if released == 0 {
		s.log.Warnf("Slot hold %s expired before release", key)
	}

	return nil
}
