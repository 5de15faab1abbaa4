package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"eskytrack/internal/cache"
	"eskytrack/internal/core/repository"
)

const defaultRegistryTTL = 10 * time.Minute

// DeviceRegistry resolves IMEIs to device ids for the protocol decoders.
// Hits are cached in Redis when the cache is enabled; misses are never cached
// so a newly registered device is picked up on its next sentence.
type DeviceRegistry struct {
	deviceRepo repository.DeviceRepository
	cache      *cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

func NewDeviceRegistry(deviceRepo repository.DeviceRepository, c *cache.Cache, ttl time.Duration, logger *zap.Logger) *DeviceRegistry {
	if ttl <= 0 {
		ttl = defaultRegistryTTL
	}
	return &DeviceRegistry{
		deviceRepo: deviceRepo,
		cache:      c,
		ttl:        ttl,
		logger:     logger,
	}
}

func registryKey(imei string) string {
	return "device:imei:" + imei
}

func (r *DeviceRegistry) LookupDeviceID(imei string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var deviceID string
	err := r.cache.Get(ctx, registryKey(imei), &deviceID)
	if err == nil && deviceID != "" {
		return deviceID, nil
	}
	if err != nil && !cache.IsMiss(err) {
		r.logger.Debug("Registry cache read failed", zap.String("imei", imei), zap.Error(err))
	}

	device, err := r.deviceRepo.FindByUniqueID(imei)
	if err != nil {
		return "", fmt.Errorf("lookup device %s: %w", imei, err)
	}
	if device == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownDevice, imei)
	}

	if err := r.cache.Set(ctx, registryKey(imei), device.ID, r.ttl); err != nil {
		r.logger.Debug("Registry cache write failed", zap.String("imei", imei), zap.Error(err))
	}
	return device.ID, nil
}

// Forget drops a cached lookup.
func (r *DeviceRegistry) Forget(ctx context.Context, imei string) {
	if err := r.cache.Delete(ctx, registryKey(imei)); err != nil {
		r.logger.Debug("Registry cache delete failed", zap.String("imei", imei), zap.Error(err))
	}
}
