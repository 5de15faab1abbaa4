package repository

import (
	"sort"
	"sync"

	"eskytrack/internal/core/model"
)

type inMemoryPositionRepository struct {
	positions map[string][]*model.Position // device id -> positions in arrival order
	mutex     sync.RWMutex
}

func NewInMemoryPositionRepository() PositionRepository {
	return &inMemoryPositionRepository{
		positions: make(map[string][]*model.Position),
	}
}

func (r *inMemoryPositionRepository) Create(position *model.Position) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.positions[position.DeviceID] = append(r.positions[position.DeviceID], position)
	return nil
}

// FindByDeviceID returns the device's positions ordered by device time.
// Positions without a time keep their arrival order ahead of timed ones.
func (r *inMemoryPositionRepository) FindByDeviceID(deviceID string) ([]*model.Position, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := append([]*model.Position(nil), r.positions[deviceID]...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].FixTime().Before(result[j].FixTime())
	})
	return result, nil
}

func (r *inMemoryPositionRepository) FindLatestByDeviceID(deviceID string) (*model.Position, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var latest *model.Position
	for _, position := range r.positions[deviceID] {
		if latest == nil || !position.FixTime().Before(latest.FixTime()) {
			latest = position
		}
	}
	return latest, nil
}
