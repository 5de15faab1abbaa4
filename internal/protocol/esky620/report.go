package esky620

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Report is the payload of an observation sentence: *GPSReport or *LBSReport.
type Report interface {
	Header() string
}

// GPSReport is an RG payload:
// RG;<satellites>+<YYMMDDhhmmss>+<lat>+<lon>+<speed m/s>+<heading>+<voltage>+<message type>
type GPSReport struct {
	Satellites  int
	Timestamp   string
	Latitude    float64
	Longitude   float64
	SpeedMPS    float64
	Heading     int
	Voltage     int
	MessageType int
}

func (r *GPSReport) Header() string { return gpsReportHeader }

// Time parses the report timestamp as UTC.
func (r *GPSReport) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, r.Timestamp, time.UTC)
}

// LBSReport is an RL payload. It is recognised so it can be told apart from
// garbage, but none of its fields are decoded into a position.
type LBSReport struct {
	MNC         string
	CellID      string
	LAC         string
	MCC         string
	IMEI        string
	Mark        string
	Voltage     string
	Timestamp   string
	MessageType string
}

func (r *LBSReport) Header() string { return lbsReportHeader }

// ParseReport matches an observation payload against the known report grammars.
// A payload matching neither yields ErrUnsupportedReport. A payload that matches
// the GPS grammar but carries a number too large for its field yields ErrMalformedField.
func ParseReport(payload string) (Report, error) {
	switch {
	case strings.HasPrefix(payload, gpsReportHeader):
		return parseGPSReport(payload[len(gpsReportHeader):])
	case strings.HasPrefix(payload, lbsReportHeader):
		return parseLBSReport(payload[len(lbsReportHeader):])
	}

	header, _, _ := strings.Cut(payload, fieldSeparator)
	return nil, fmt.Errorf("%w: header %q", ErrUnsupportedReport, header)
}

func parseGPSReport(body string) (*GPSReport, error) {
	fields := strings.Split(body, valueSeparator)
	if len(fields) != gpsFieldCount {
		return nil, fmt.Errorf("%w: gps report has %d fields, need %d",
			ErrUnsupportedReport, len(fields), gpsFieldCount)
	}

	grammar := []struct {
		name  string
		match func(string) bool
	}{
		{"satellites", isDigits},
		{"timestamp", isTimestamp},
		{"latitude", isSignedDecimal},
		{"longitude", isSignedDecimal},
		{"speed", isDecimal},
		{"heading", isDigits},
		{"voltage", isDigits},
		{"message type", isDigits},
	}
	for i, rule := range grammar {
		if !rule.match(fields[i]) {
			return nil, fmt.Errorf("%w: gps report %s %q", ErrUnsupportedReport, rule.name, fields[i])
		}
	}

	p := fieldParser{fields: fields}
	report := &GPSReport{
		Satellites:  p.integer(0, "satellites"),
		Timestamp:   fields[1],
		Latitude:    p.decimal(2, "latitude"),
		Longitude:   p.decimal(3, "longitude"),
		SpeedMPS:    p.decimal(4, "speed"),
		Heading:     p.integer(5, "heading"),
		Voltage:     p.integer(6, "voltage"),
		MessageType: p.integer(7, "message type"),
	}
	if p.err != nil {
		return nil, p.err
	}
	return report, nil
}

func parseLBSReport(body string) (*LBSReport, error) {
	head := strings.SplitN(body, lbsSeparator, lbsHeadCount)
	if len(head) != lbsHeadCount {
		return nil, fmt.Errorf("%w: lbs report has %d cell fields, need %d",
			ErrUnsupportedReport, len(head), lbsHeadCount)
	}
	for i := 0; i < 4; i++ {
		if !isDigits(head[i]) {
			return nil, fmt.Errorf("%w: lbs cell field %q", ErrUnsupportedReport, head[i])
		}
	}
	if !isIMEI(head[4]) {
		return nil, fmt.Errorf("%w: lbs imei %q", ErrUnsupportedReport, head[4])
	}

	// The mark may itself contain '+', so the trailing values are taken from the right.
	tail := head[5]
	var trailing [3]string
	for i := len(trailing) - 1; i >= 0; i-- {
		idx := strings.LastIndex(tail, valueSeparator)
		if idx < 0 {
			return nil, fmt.Errorf("%w: lbs report truncated", ErrUnsupportedReport)
		}
		trailing[i] = tail[idx+1:]
		tail = tail[:idx]
	}

	report := &LBSReport{
		MNC:         head[0],
		CellID:      head[1],
		LAC:         head[2],
		MCC:         head[3],
		IMEI:        head[4],
		Mark:        tail,
		Voltage:     trailing[0],
		Timestamp:   trailing[1],
		MessageType: trailing[2],
	}
	if report.Mark == "" || !isDigits(report.Voltage) ||
		!isTimestamp(report.Timestamp) || !isDigits(report.MessageType) {
		return nil, fmt.Errorf("%w: lbs report values", ErrUnsupportedReport)
	}
	return report, nil
}

// fieldParser converts grammar-checked fields, keeping the first failure.
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) integer(i int, name string) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.fields[i])
	if err != nil {
		p.err = fmt.Errorf("%w: %s %q: %v", ErrMalformedField, name, p.fields[i], err)
	}
	return v
}

func (p *fieldParser) decimal(i int, name string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.fields[i], 64)
	if err != nil {
		p.err = fmt.Errorf("%w: %s %q: %v", ErrMalformedField, name, p.fields[i], err)
	}
	return v
}

func isTimestamp(s string) bool {
	return len(s) == timestampLength && isDigits(s)
}

// isDecimal matches \d+\.\d+
func isDecimal(s string) bool {
	whole, frac, ok := strings.Cut(s, ".")
	return ok && isDigits(whole) && isDigits(frac)
}

// isSignedDecimal matches -?\d+\.\d+
func isSignedDecimal(s string) bool {
	return isDecimal(strings.TrimPrefix(s, "-"))
}
