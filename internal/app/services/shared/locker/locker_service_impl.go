package locker

import (
	"context"
	"errors"
	"fmt"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/exceptions"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errLockNotOwned = errors.New("lock not owned by this client")

type lockService struct {
	redisRepo contracts.RedisRepository
	Log       *zap.Logger
}

func NewLockService(repo contracts.RedisRepository, logger *zap.Logger) contracts.LockerService {
	return &lockService{
		redisRepo: repo,
		Log:       logger,
	}
}

func (s *lockService) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	log := s.Log.With(
		zap.String(constvars.LoggingMethodKey, "lockService.TryLock"),
		zap.String(constvars.LoggingRedisKey, key),
	)

	lockValue := uuid.NewString()
	acquired, err := s.redisRepo.TrySetNX(ctx, key, lockValue, expiration)
	if err != nil {
		log.Error("error calling redisRepo.TrySetNX", zap.Error(err))
		return false, "", err
	}

	if !acquired {
		log.Debug("lock not acquired")
		return false, "", nil
	}

	log.Debug("lock acquired",
		zap.String(constvars.LoggingLockValueKey, lockValue),
		zap.Duration(constvars.LoggingLockExpirationTimeKey, expiration),
	)
	return true, lockValue, nil
}

func (s *lockService) Unlock(ctx context.Context, key, lockValue string) error {
	log := s.Log.With(
		zap.String(constvars.LoggingMethodKey, "lockService.Unlock"),
		zap.String(constvars.LoggingRedisKey, key),
	)

	owned, err := s.owns(ctx, log, key, lockValue)
	if err != nil || !owned {
		return err
	}

	if err := s.redisRepo.Delete(ctx, key); err != nil {
		log.Error("error deleting lock from redis", zap.Error(err))
		return err
	}

	log.Debug("lock released")
	return nil
}

// Refresh extends the lock TTL when lockValue still owns it.
func (s *lockService) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	log := s.Log.With(
		zap.String(constvars.LoggingMethodKey, "lockService.Refresh"),
		zap.String(constvars.LoggingRedisKey, key),
	)

	owned, err := s.owns(ctx, log, key, lockValue)
	if err != nil {
		return err
	}
	if !owned {
		return exceptions.ErrRedisUnlock(fmt.Errorf("lock %s expired before refresh", key))
	}

	if err := s.redisRepo.Expire(ctx, key, expiration); err != nil {
		log.Error("error extending lock TTL", zap.Error(err))
		return err
	}
	return nil
}

// owns reports whether lockValue holds key. A missing key is not an error.
// Values are stored JSON encoded, so the raw token is compared quoted.
func (s *lockService) owns(ctx context.Context, log *zap.Logger, key, lockValue string) (bool, error) {
	storedVal, err := s.redisRepo.Get(ctx, key)
	if err != nil {
		log.Error("error retrieving value from redis", zap.Error(err))
		return false, err
	}
	if storedVal == "" {
		log.Debug("no lock found")
		return false, nil
	}

	expectedValue := fmt.Sprintf("\"%s\"", lockValue)
	if storedVal != expectedValue {
		err := exceptions.ErrRedisUnlock(errLockNotOwned)
		log.Error("lock ownership mismatch",
			zap.String(constvars.LoggingLockStoredValueKey, storedVal),
			zap.String(constvars.LoggingLockExpectedValueKey, expectedValue),
			zap.Error(err),
		)
		return false, err
	}
	return true, nil
}
