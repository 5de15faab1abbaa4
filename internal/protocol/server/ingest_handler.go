package server

import (
	"go.uber.org/zap"

	"eskytrack/internal/protocol/esky620"
)

// Ingester is the position pipeline entry point.
type Ingester interface {
	IngestSentence(sentence string) (esky620.Result, error)
}

// IngestHandler feeds framed sentences into the position pipeline. Failures
// are logged and the connection keeps reading.
type IngestHandler struct {
	ingester Ingester
	logger   *zap.Logger
}

func NewIngestHandler(ingester Ingester, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{ingester: ingester, logger: logger}
}

func (h *IngestHandler) HandleSentence(remoteAddr, sentence string) {
	result, err := h.ingester.IngestSentence(sentence)
	switch {
	case err != nil:
		h.logger.Warn("Failed to ingest sentence",
			zap.String("remote", remoteAddr), zap.String("sentence", sentence), zap.Error(err))
	case result.IsIgnored():
		h.logger.Debug("Sentence ignored",
			zap.String("remote", remoteAddr), zap.String("reason", string(result.Ignored)))
	default:
		h.logger.Debug("Position decoded",
			zap.String("remote", remoteAddr),
			zap.String("deviceId", result.Position.DeviceID),
			zap.Float64("lat", result.Position.Latitude),
			zap.Float64("lon", result.Position.Longitude))
	}
}
