package handler

import (
	"encoding/json"
	"net/http"

	"eskytrack/internal/core/service"
)

type PositionHandler struct {
	positionService service.PositionService
}

func NewPositionHandler(positionService service.PositionService) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
	}
}

type rawSentenceRequest struct {
	Sentence string `json:"sentence"`
}

type ignoredResponse struct {
	Ignored string `json:"ignored"`
}

func (h *PositionHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		http.Error(w, "Device ID required", http.StatusBadRequest)
		return
	}

	positions, err := h.positionService.GetDevicePositions(deviceID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, positions)
}

func (h *PositionHandler) GetLatestPosition(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		http.Error(w, "Device ID required", http.StatusBadRequest)
		return
	}

	position, err := h.positionService.GetLatestPosition(deviceID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if position == nil {
		http.Error(w, "No position found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, position)
}

// ProcessRawData ingests one device sentence posted over HTTP, the same way
// the TCP listener does. Ignored sentences answer 202 with the reason.
func (h *PositionHandler) ProcessRawData(w http.ResponseWriter, r *http.Request) {
	var req rawSentenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Sentence == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.positionService.IngestSentence(req.Sentence)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if result.IsIgnored() {
		writeJSON(w, http.StatusAccepted, ignoredResponse{Ignored: string(result.Ignored)})
		return
	}

	writeJSON(w, http.StatusOK, result.Position)
}
