// Package publish forwards decoded positions to downstream consumers.
package publish

import (
	"eskytrack/internal/core/model"
)

type Publisher interface {
	Publish(position *model.Position) error
	Close()
}

// NopPublisher drops every position. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(*model.Position) error { return nil }
func (NopPublisher) Close()                        {}
