package service

import (
	"context"
	"errors"
	"fmt"

	"eskytrack/internal/core/model"
	"eskytrack/internal/core/repository"
)

var (
	ErrInvalidDevice = errors.New("invalid device data")
	ErrInvalidIMEI   = errors.New("device unique id must be a 15 digit IMEI")
	ErrUnknownDevice = errors.New("unknown device")
)

type DeviceService interface {
	CreateDevice(name, uniqueID string) (*model.Device, error)
	DeleteDevice(id string) error
	GetDevice(id string) (*model.Device, error)
	GetAllDevices() ([]*model.Device, error)
}

type deviceService struct {
	deviceRepo repository.DeviceRepository
	registry   *DeviceRegistry
}

// NewDeviceService returns the device management service. registry may be
// nil; when set, its cached lookups are invalidated on delete.
func NewDeviceService(deviceRepo repository.DeviceRepository, registry *DeviceRegistry) DeviceService {
	return &deviceService{
		deviceRepo: deviceRepo,
		registry:   registry,
	}
}

func (s *deviceService) CreateDevice(name, uniqueID string) (*model.Device, error) {
	if name == "" || uniqueID == "" {
		return nil, ErrInvalidDevice
	}
	if !isIMEI(uniqueID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIMEI, uniqueID)
	}

	device := model.NewDevice(name, uniqueID)
	if err := s.deviceRepo.Create(device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *deviceService) DeleteDevice(id string) error {
	if id == "" {
		return errors.New("invalid device ID")
	}

	device, err := s.deviceRepo.FindByID(id)
	if err != nil {
		return err
	}
	if device == nil {
		return fmt.Errorf("%w: device %s", repository.ErrNotFound, id)
	}

	if err := s.deviceRepo.Delete(id); err != nil {
		return err
	}
	if s.registry != nil {
		s.registry.Forget(context.Background(), device.UniqueID)
	}
	return nil
}

func (s *deviceService) GetDevice(id string) (*model.Device, error) {
	if id == "" {
		return nil, errors.New("invalid device ID")
	}
	return s.deviceRepo.FindByID(id)
}

func (s *deviceService) GetAllDevices() ([]*model.Device, error) {
	return s.deviceRepo.FindAll()
}

func isIMEI(s string) bool {
	if len(s) != 15 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
