package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"eskytrack/internal/core/model"
	"eskytrack/internal/core/repository"
	"eskytrack/internal/metrics"
	"eskytrack/internal/protocol/esky620"
	"eskytrack/internal/publish"
)

// SentenceDecoder turns one raw device sentence into a decode result.
type SentenceDecoder interface {
	Decode(sentence string) (esky620.Result, error)
}

type PositionService interface {
	IngestSentence(sentence string) (esky620.Result, error)
	GetDevicePositions(deviceID string) ([]*model.Position, error)
	GetLatestPosition(deviceID string) (*model.Position, error)
}

type positionService struct {
	positionRepo repository.PositionRepository
	deviceRepo   repository.DeviceRepository
	decoder      SentenceDecoder
	publisher    publish.Publisher
	metrics      *metrics.Ingest
	logger       *zap.Logger
}

func NewPositionService(
	positionRepo repository.PositionRepository,
	deviceRepo repository.DeviceRepository,
	decoder SentenceDecoder,
	publisher publish.Publisher,
	m *metrics.Ingest,
	logger *zap.Logger,
) PositionService {
	if publisher == nil {
		publisher = publish.NopPublisher{}
	}
	return &positionService{
		positionRepo: positionRepo,
		deviceRepo:   deviceRepo,
		decoder:      decoder,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

// IngestSentence decodes a sentence and, when it yields a position, stores it,
// marks the device active and publishes it downstream. Ignored sentences
// return their Result with a nil error. A failed publish is logged but does
// not fail the ingest; the position is already stored.
func (s *positionService) IngestSentence(sentence string) (esky620.Result, error) {
	result, err := s.decoder.Decode(sentence)
	if err != nil {
		s.metrics.Sentence(metrics.OutcomeError)
		return result, err
	}
	if result.IsIgnored() {
		s.metrics.Sentence(string(result.Ignored))
		return result, nil
	}
	s.metrics.Sentence(metrics.OutcomeDecoded)

	position := result.Position
	if err := s.positionRepo.Create(position); err != nil {
		return result, fmt.Errorf("failed to store position for device %s: %w", position.DeviceID, err)
	}
	s.metrics.Stored()

	s.markDeviceActive(position)

	err = s.publisher.Publish(position)
	s.metrics.Published(err)
	if err != nil {
		s.logger.Warn("Failed to publish position",
			zap.String("deviceId", position.DeviceID), zap.String("positionId", position.ID), zap.Error(err))
	}

	return result, nil
}

func (s *positionService) markDeviceActive(position *model.Position) {
	device, err := s.deviceRepo.FindByID(position.DeviceID)
	if err != nil || device == nil {
		s.logger.Warn("Failed to load device for position",
			zap.String("deviceId", position.DeviceID), zap.Error(err))
		return
	}

	device.MarkActive(position.ID, time.Now())
	if err := s.deviceRepo.Update(device); err != nil {
		s.logger.Warn("Failed to update device status",
			zap.String("deviceId", position.DeviceID), zap.Error(err))
	}
}

func (s *positionService) GetDevicePositions(deviceID string) ([]*model.Position, error) {
	if deviceID == "" {
		return nil, errors.New("invalid device ID")
	}
	return s.positionRepo.FindByDeviceID(deviceID)
}

func (s *positionService) GetLatestPosition(deviceID string) (*model.Position, error) {
	if deviceID == "" {
		return nil, errors.New("invalid device ID")
	}
	return s.positionRepo.FindLatestByDeviceID(deviceID)
}
