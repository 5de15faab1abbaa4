package esky620

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"eskytrack/internal/core/model"
)

// DeviceRegistry resolves a device IMEI to its internal device id.
// Implementations must be safe for concurrent use.
type DeviceRegistry interface {
	LookupDeviceID(imei string) (string, error)
}

// Result is the outcome of decoding one sentence: either a Position,
// or the reason the sentence was ignored.
type Result struct {
	Position *model.Position
	Ignored  IgnoreReason
}

func (r Result) IsIgnored() bool {
	return r.Position == nil
}

func ignored(reason IgnoreReason) Result {
	return Result{Ignored: reason}
}

// Decoder is stateless apart from its collaborators; one instance can serve
// every connection concurrently.
type Decoder struct {
	registry DeviceRegistry
	logger   *zap.Logger
	protocol string
}

type Option func(*Decoder)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithProtocolName overrides the protocol name stamped on positions.
func WithProtocolName(name string) Option {
	return func(d *Decoder) {
		d.protocol = name
	}
}

func NewDecoder(registry DeviceRegistry, opts ...Option) *Decoder {
	d := &Decoder{
		registry: registry,
		logger:   zap.NewNop(),
		protocol: ProtocolName,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode turns one raw sentence into a position. Unknown formats, login
// sentences, unsupported reports and unregistered devices are not errors;
// they come back as an ignored Result. An error is returned only when a
// sentence matches the report grammar but one of its values cannot be
// represented.
func (d *Decoder) Decode(sentence string) (Result, error) {
	env, err := ParseEnvelope(sentence)
	if err != nil {
		d.logger.Debug("Ignoring sentence", zap.String("sentence", sentence), zap.Error(err))
		return ignored(ReasonUnrecognized), nil
	}
	return d.decodeMessage(env)
}

func (d *Decoder) decodeMessage(env *Envelope) (Result, error) {
	switch env.Kind {
	case KindObservation:
	case KindLogin:
		// handshake only, no location
		return ignored(ReasonLogin), nil
	default:
		return ignored(ReasonUnsupportedKind), nil
	}

	report, err := ParseReport(env.Payload)
	if err != nil {
		if errors.Is(err, ErrUnsupportedReport) {
			d.logger.Debug("Ignoring report", zap.String("imei", env.IMEI), zap.Error(err))
			return ignored(ReasonUnsupportedReport), nil
		}
		return Result{}, fmt.Errorf("failed to decode report from %s: %w", env.IMEI, err)
	}

	switch r := report.(type) {
	case *GPSReport:
		return d.decodeGPSReport(env.IMEI, r), nil
	case *LBSReport:
		return ignored(ReasonLBSReport), nil
	default:
		return ignored(ReasonUnsupportedReport), nil
	}
}

func (d *Decoder) decodeGPSReport(imei string, report *GPSReport) Result {
	deviceID, err := d.registry.LookupDeviceID(imei)
	if err != nil || deviceID == "" {
		d.logger.Warn("Unknown device", zap.String("imei", imei), zap.Error(err))
		return ignored(ReasonUnknownDevice)
	}
	return Result{Position: d.ToPosition(deviceID, report)}
}

// ToPosition assembles a position from a parsed GPS report. It cannot fail:
// an unparsable timestamp only leaves Time nil.
func (d *Decoder) ToPosition(deviceID string, report *GPSReport) *model.Position {
	position := model.NewPosition(deviceID, report.Latitude, report.Longitude)
	position.Protocol = d.protocol

	if ts, err := report.Time(); err == nil {
		position.Time = &ts
	}

	// 0,0 is what the device sends without a fix
	position.Valid = !(report.Latitude == 0 && report.Longitude == 0)
	position.Speed = report.SpeedMPS * KnotsPerMeterPerSecond
	position.Course = float64(report.Heading)
	position.Altitude = DefaultAltitude

	position.ExtendedInfo = model.ExtendedInfo{
		Satellites:  report.Satellites,
		Voltage:     report.Voltage,
		MessageType: report.MessageType,
	}

	return position
}
