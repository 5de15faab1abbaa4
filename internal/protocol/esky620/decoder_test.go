package esky620

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

const testIMEI = "123456789012345"

type fakeRegistry map[string]string

func (r fakeRegistry) LookupDeviceID(imei string) (string, error) {
	if id, ok := r[imei]; ok {
		return id, nil
	}
	return "", errors.New("device not found")
}

func newTestDecoder() (*Decoder, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	registry := fakeRegistry{testIMEI: "device-1"}
	return NewDecoder(registry, WithLogger(zap.New(core))), logs
}

func TestDecoderIgnoredSentences(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		want     IgnoreReason
	}{
		{
			name:     "string too short",
			sentence: "EL;0",
			want:     ReasonUnrecognized,
		},
		{
			name:     "empty sentence",
			sentence: "",
			want:     ReasonUnrecognized,
		},
		{
			name:     "unknown kind",
			sentence: "EX;1;123456789012345;RG;4+150407185854+44.58039+-74.71671+0.24+0+4241+1",
			want:     ReasonUnrecognized,
		},
		{
			name:     "short imei",
			sentence: "EO;1;12345678901234;RG;4+150407185854+44.58039+-74.71671+0.24+0+4241+1",
			want:     ReasonUnrecognized,
		},
		{
			name:     "login",
			sentence: "EL;1;123456789012345;150408015203;",
			want:     ReasonLogin,
		},
		{
			name:     "login without trailing separator",
			sentence: "EL;1;123456789012345;150408015207",
			want:     ReasonLogin,
		},
		{
			name:     "lbs report",
			sentence: "EO;1;123456789012345;RL;1,7745,1021,460,123456789012345,AB+CD+4100+150408015802+2",
			want:     ReasonLBSReport,
		},
		{
			name:     "unknown report header",
			sentence: "EO;1;123456789012345;RX;4+150407185854",
			want:     ReasonUnsupportedReport,
		},
		{
			name:     "gps report missing field",
			sentence: "EO;1;123456789012345;RG;4+150407185854+44.58039+-74.71671+0.24+0+4241",
			want:     ReasonUnsupportedReport,
		},
		{
			name:     "gps report integer latitude",
			sentence: "EO;1;123456789012345;RG;4+150407185854+44+-74.71671+0.24+0+4241+1",
			want:     ReasonUnsupportedReport,
		},
		{
			name:     "gps report negative speed",
			sentence: "EO;1;123456789012345;RG;4+150407185854+44.58039+-74.71671+-0.24+0+4241+1",
			want:     ReasonUnsupportedReport,
		},
		{
			name:     "unregistered device",
			sentence: "EO;1;999999999999999;RG;4+150407185854+44.58039+-74.71671+0.24+0+4241+1",
			want:     ReasonUnknownDevice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder, _ := newTestDecoder()

			got, err := decoder.Decode(tt.sentence)
			require.NoError(t, err)
			assert.True(t, got.IsIgnored())
			assert.Nil(t, got.Position)
			assert.Equal(t, tt.want, got.Ignored)
		})
	}
}

func TestDecoderUnknownDeviceWarnsOnce(t *testing.T) {
	decoder, logs := newTestDecoder()

	got, err := decoder.Decode("EO;1;999999999999999;RG;4+150407185854+44.58039+-74.71671+0.24+0+4241+1")
	require.NoError(t, err)
	assert.Equal(t, ReasonUnknownDevice, got.Ignored)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Unknown device", warnings[0].Message)
	assert.Equal(t, "999999999999999", warnings[0].ContextMap()["imei"])
}

func TestDecoderGPSReport(t *testing.T) {
	tests := []struct {
		name      string
		sentence  string
		latitude  float64
		longitude float64
		speed     float64
		course    float64
		valid     bool
		time      *time.Time
		extended  [3]int
	}{
		{
			name:      "first report",
			sentence:  "EO;1;123456789012345;RG;4+150407185854+44.58039+-74.71671+0.24+0+4241+1",
			latitude:  44.58039,
			longitude: -74.71671,
			speed:     0.46652256,
			course:    0,
			valid:     true,
			time:      timePtr(time.Date(2015, 4, 7, 18, 58, 54, 0, time.UTC)),
			extended:  [3]int{4, 4241, 1},
		},
		{
			name:      "heading 353",
			sentence:  "EO;1;123456789012345;RG;4+150407193657+44.58023+-74.71762+0.93+353+4301+1",
			latitude:  44.58023,
			longitude: -74.71762,
			speed:     0.93 * KnotsPerMeterPerSecond,
			course:    353,
			valid:     true,
			time:      timePtr(time.Date(2015, 4, 7, 19, 36, 57, 0, time.UTC)),
			extended:  [3]int{4, 4301, 1},
		},
		{
			name:      "five satellites",
			sentence:  "EO;1;123456789012345;RG;5+150407212257+44.58000+-74.71766+0.66+70+4159+1",
			latitude:  44.58,
			longitude: -74.71766,
			speed:     0.66 * KnotsPerMeterPerSecond,
			course:    70,
			valid:     true,
			time:      timePtr(time.Date(2015, 4, 7, 21, 22, 57, 0, time.UTC)),
			extended:  [3]int{5, 4159, 1},
		},
		{
			name:      "no fix",
			sentence:  "EO;7;123456789012345;RG;0+150408015802+0.0+0.0+0.00+0+4301+3",
			latitude:  0,
			longitude: 0,
			speed:     0,
			course:    0,
			valid:     false,
			time:      timePtr(time.Date(2015, 4, 8, 1, 58, 2, 0, time.UTC)),
			extended:  [3]int{0, 4301, 3},
		},
		{
			name:      "zero latitude only",
			sentence:  "EO;7;123456789012345;RG;6+150408015802+0.0+-74.71766+1.00+90+4301+1",
			latitude:  0,
			longitude: -74.71766,
			speed:     KnotsPerMeterPerSecond,
			course:    90,
			valid:     true,
			time:      timePtr(time.Date(2015, 4, 8, 1, 58, 2, 0, time.UTC)),
			extended:  [3]int{6, 4301, 1},
		},
		{
			name:      "unparsable timestamp",
			sentence:  "EO;1;123456789012345;RG;4+151399185854+44.58039+-74.71671+0.24+0+4241+1",
			latitude:  44.58039,
			longitude: -74.71671,
			speed:     0.24 * KnotsPerMeterPerSecond,
			course:    0,
			valid:     true,
			time:      nil,
			extended:  [3]int{4, 4241, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder, logs := newTestDecoder()

			got, err := decoder.Decode(tt.sentence)
			require.NoError(t, err)
			require.False(t, got.IsIgnored())
			require.NotNil(t, got.Position)

			p := got.Position
			assert.Equal(t, "device-1", p.DeviceID)
			assert.Equal(t, ProtocolName, p.Protocol)
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, tt.latitude, p.Latitude)
			assert.Equal(t, tt.longitude, p.Longitude)
			assert.InDelta(t, tt.speed, p.Speed, 1e-9)
			assert.Equal(t, tt.course, p.Course)
			assert.Equal(t, tt.valid, p.Valid)
			assert.Equal(t, 0.0, p.Altitude)
			if tt.time == nil {
				assert.Nil(t, p.Time)
			} else {
				require.NotNil(t, p.Time)
				assert.True(t, tt.time.Equal(*p.Time), "time = %v, want %v", p.Time, tt.time)
			}
			assert.Equal(t, tt.extended[0], p.ExtendedInfo.Satellites)
			assert.Equal(t, tt.extended[1], p.ExtendedInfo.Voltage)
			assert.Equal(t, tt.extended[2], p.ExtendedInfo.MessageType)

			assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
		})
	}
}

func TestDecoderMalformedField(t *testing.T) {
	decoder, _ := newTestDecoder()

	got, err := decoder.Decode("EO;1;123456789012345;RG;99999999999999999999999+150407185854+44.58039+-74.71671+0.24+0+4241+1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedField))
	assert.Nil(t, got.Position)
}

func TestDecoderProtocolName(t *testing.T) {
	decoder := NewDecoder(fakeRegistry{testIMEI: "device-1"}, WithProtocolName("esky"))

	got, err := decoder.Decode("EO;1;123456789012345;RG;4+150407185854+44.58039+-74.71671+0.24+0+4241+1")
	require.NoError(t, err)
	require.NotNil(t, got.Position)
	assert.Equal(t, "esky", got.Position.Protocol)
}

func TestDecoderProperties(t *testing.T) {
	decoder := NewDecoder(fakeRegistry{testIMEI: "device-1"})

	rapid.Check(t, func(t *rapid.T) {
		noFix := rapid.Bool().Draw(t, "noFix")
		lat := "0.0"
		lon := "0.000"
		if !noFix {
			lat = drawSignedDecimal(t, "lat", 90)
			lon = drawSignedDecimal(t, "lon", 180)
		}
		speed := fmt.Sprintf("%d.%02d",
			rapid.IntRange(0, 200).Draw(t, "speedWhole"),
			rapid.IntRange(0, 99).Draw(t, "speedFrac"))
		satellites := rapid.IntRange(0, 32).Draw(t, "satellites")
		heading := rapid.IntRange(0, 359).Draw(t, "heading")
		voltage := rapid.IntRange(0, 9999).Draw(t, "voltage")
		messageType := rapid.IntRange(0, 99).Draw(t, "messageType")

		sentence := fmt.Sprintf("EO;%d;%s;RG;%d+150407185854+%s+%s+%s+%d+%d+%d",
			rapid.IntRange(0, 9999).Draw(t, "sequence"), testIMEI,
			satellites, lat, lon, speed, heading, voltage, messageType)

		got, err := decoder.Decode(sentence)
		if err != nil {
			t.Fatalf("Decode(%q) unexpected error: %v", sentence, err)
		}
		p := got.Position
		if p == nil {
			t.Fatalf("Decode(%q) ignored: %s", sentence, got.Ignored)
		}

		wantLat, _ := strconv.ParseFloat(lat, 64)
		wantLon, _ := strconv.ParseFloat(lon, 64)
		wantSpeed, _ := strconv.ParseFloat(speed, 64)

		assert.Equal(t, wantLat, p.Latitude)
		assert.Equal(t, wantLon, p.Longitude)
		assert.InDelta(t, wantSpeed*KnotsPerMeterPerSecond, p.Speed, 1e-9)
		assert.Equal(t, !(wantLat == 0 && wantLon == 0), p.Valid)
		assert.Equal(t, 0.0, p.Altitude)
		assert.Equal(t, float64(heading), p.Course)
		assert.Equal(t, satellites, p.ExtendedInfo.Satellites)
		assert.Equal(t, voltage, p.ExtendedInfo.Voltage)
		assert.Equal(t, messageType, p.ExtendedInfo.MessageType)
	})
}

func TestDecoderLoginNeverProducesPosition(t *testing.T) {
	decoder := NewDecoder(fakeRegistry{testIMEI: "device-1"})

	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.StringMatching(`[0-9A-Z;+.,-]{1,40}`).Draw(t, "payload")
		sentence := "EL;1;" + testIMEI + ";" + payload

		got, err := decoder.Decode(sentence)
		if err != nil {
			t.Fatalf("Decode(%q) unexpected error: %v", sentence, err)
		}
		assert.Equal(t, ReasonLogin, got.Ignored)
		assert.Nil(t, got.Position)
	})
}

func drawSignedDecimal(t *rapid.T, label string, max int) string {
	sign := ""
	if rapid.Bool().Draw(t, label+"Negative") {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%05d", sign,
		rapid.IntRange(1, max-1).Draw(t, label+"Whole"),
		rapid.IntRange(0, 99999).Draw(t, label+"Frac"))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
