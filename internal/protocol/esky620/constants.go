// Package esky620 implements the decoder for the eSky620 GPS tracker protocol
package esky620

import "errors"

// Protocol constants
const (
	ProtocolName = "esky620"

	envelopePrefix  = 'E'
	fieldSeparator  = ";"
	valueSeparator  = "+"
	lbsSeparator    = ","
	gpsReportHeader = "RG;"
	lbsReportHeader = "RL;"

	imeiLength      = 15
	timestampLength = 12
	gpsFieldCount   = 8
	lbsHeadCount    = 6 // mnc, cell id, lac, mcc, imei, mark+...

	// TimestampLayout is YYMMDDhhmmss, interpreted as UTC
	TimestampLayout = "060102150405"

	// KnotsPerMeterPerSecond converts the device's m/s speed into knots,
	// the canonical speed unit of the position pipeline.
	KnotsPerMeterPerSecond = 1.943844

	// DefaultAltitude is reported for every fix; the device never sends altitude.
	DefaultAltitude = 0.0
)

// Common errors
var (
	ErrUnrecognizedSentence = errors.New("unrecognized eSky620 sentence")
	ErrUnsupportedReport    = errors.New("unsupported report")
	ErrMalformedField       = errors.New("malformed report field")
)

// IgnoreReason says why a sentence produced no position.
type IgnoreReason string

const (
	ReasonUnrecognized      IgnoreReason = "unrecognized"
	ReasonLogin             IgnoreReason = "login"
	ReasonUnsupportedKind   IgnoreReason = "unsupported-kind"
	ReasonUnsupportedReport IgnoreReason = "unsupported-report"
	ReasonLBSReport         IgnoreReason = "lbs-report"
	ReasonUnknownDevice     IgnoreReason = "unknown-device"
)
