package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"eskytrack/internal/core/model"
	"eskytrack/internal/protocol/esky620"
)

type stubIngester struct {
	result esky620.Result
	err    error
	calls  []string
}

func (s *stubIngester) IngestSentence(sentence string) (esky620.Result, error) {
	s.calls = append(s.calls, sentence)
	return s.result, s.err
}

func TestIngestHandler(t *testing.T) {
	tests := []struct {
		name      string
		result    esky620.Result
		err       error
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{
			name:      "decoded",
			result:    esky620.Result{Position: model.NewPosition("device-1", 1, 2)},
			wantLevel: zapcore.DebugLevel,
			wantMsg:   "Position decoded",
		},
		{
			name:      "ignored",
			result:    esky620.Result{Ignored: esky620.ReasonLogin},
			wantLevel: zapcore.DebugLevel,
			wantMsg:   "Sentence ignored",
		},
		{
			name:      "error",
			err:       errors.New("boom"),
			wantLevel: zapcore.WarnLevel,
			wantMsg:   "Failed to ingest sentence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			ingester := &stubIngester{result: tt.result, err: tt.err}
			h := NewIngestHandler(ingester, zap.New(core))

			h.HandleSentence("10.0.0.1:4000", "EO;1")

			assert.Equal(t, []string{"EO;1"}, ingester.calls)
			entries := logs.All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.wantLevel, entries[0].Level)
				assert.Equal(t, tt.wantMsg, entries[0].Message)
			}
		})
	}
}
