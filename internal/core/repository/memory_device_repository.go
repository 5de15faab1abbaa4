package repository

import (
	"fmt"
	"sort"
	"sync"

	"eskytrack/internal/core/model"
)

type inMemoryDeviceRepository struct {
	devices  map[string]*model.Device
	byUnique map[string]string // imei -> device id
	mutex    sync.RWMutex
}

func NewInMemoryDeviceRepository() DeviceRepository {
	return &inMemoryDeviceRepository{
		devices:  make(map[string]*model.Device),
		byUnique: make(map[string]string),
	}
}

func (r *inMemoryDeviceRepository) Create(device *model.Device) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.devices[device.ID]; exists {
		return fmt.Errorf("device with ID %s already exists", device.ID)
	}
	if _, exists := r.byUnique[device.UniqueID]; exists {
		return ErrDuplicateDevice
	}

	stored := *device
	r.devices[device.ID] = &stored
	r.byUnique[device.UniqueID] = device.ID
	return nil
}

func (r *inMemoryDeviceRepository) Update(device *model.Device) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.devices[device.ID]
	if !exists {
		return fmt.Errorf("%w: device %s", ErrNotFound, device.ID)
	}
	if existing.UniqueID != device.UniqueID {
		if _, taken := r.byUnique[device.UniqueID]; taken {
			return ErrDuplicateDevice
		}
		delete(r.byUnique, existing.UniqueID)
		r.byUnique[device.UniqueID] = device.ID
	}

	stored := *device
	r.devices[device.ID] = &stored
	return nil
}

func (r *inMemoryDeviceRepository) Delete(id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	device, exists := r.devices[id]
	if !exists {
		return fmt.Errorf("%w: device %s", ErrNotFound, id)
	}

	delete(r.byUnique, device.UniqueID)
	delete(r.devices, id)
	return nil
}

func (r *inMemoryDeviceRepository) FindByID(id string) (*model.Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if device, exists := r.devices[id]; exists {
		found := *device
		return &found, nil
	}
	return nil, nil
}

func (r *inMemoryDeviceRepository) FindByUniqueID(uniqueID string) (*model.Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if id, exists := r.byUnique[uniqueID]; exists {
		found := *r.devices[id]
		return &found, nil
	}
	return nil, nil
}

func (r *inMemoryDeviceRepository) FindAll() ([]*model.Device, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	devices := make([]*model.Device, 0, len(r.devices))
	for _, device := range r.devices {
		found := *device
		devices = append(devices, &found)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].CreatedAt.Before(devices[j].CreatedAt)
	})
	return devices, nil
}
