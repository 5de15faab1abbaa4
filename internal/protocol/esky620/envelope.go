package esky620

import (
	"fmt"
	"strings"
)

// MessageKind is the letter following the 'E' header.
type MessageKind byte

const (
	KindLogin       MessageKind = 'L'
	KindObservation MessageKind = 'O'
)

func (k MessageKind) String() string {
	switch k {
	case KindLogin:
		return "login"
	case KindObservation:
		return "observation"
	default:
		return fmt.Sprintf("unknown(%q)", byte(k))
	}
}

// Envelope is the outer framing shared by every sentence:
// E<kind>;<sequence>;<imei>;<payload>
type Envelope struct {
	Kind     MessageKind
	Sequence string // required by the grammar, otherwise unused
	IMEI     string
	Payload  string
}

// ParseEnvelope splits a raw sentence into its envelope fields.
func ParseEnvelope(sentence string) (*Envelope, error) {
	if len(sentence) < 3 || sentence[0] != envelopePrefix {
		return nil, fmt.Errorf("%w: missing header", ErrUnrecognizedSentence)
	}

	kind := MessageKind(sentence[1])
	if kind != KindLogin && kind != KindObservation {
		return nil, fmt.Errorf("%w: message kind %q", ErrUnrecognizedSentence, sentence[1])
	}

	if sentence[2:3] != fieldSeparator {
		return nil, fmt.Errorf("%w: missing separator after header", ErrUnrecognizedSentence)
	}

	parts := strings.SplitN(sentence[3:], fieldSeparator, 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: got %d envelope fields, need 3", ErrUnrecognizedSentence, len(parts))
	}

	env := &Envelope{
		Kind:     kind,
		Sequence: parts[0],
		IMEI:     parts[1],
		Payload:  parts[2],
	}

	if !isDigits(env.Sequence) {
		return nil, fmt.Errorf("%w: sequence %q", ErrUnrecognizedSentence, env.Sequence)
	}
	if !isIMEI(env.IMEI) {
		return nil, fmt.Errorf("%w: imei %q", ErrUnrecognizedSentence, env.IMEI)
	}
	if env.Payload == "" || strings.ContainsAny(env.Payload, "\r\n") {
		return nil, fmt.Errorf("%w: empty or multi-line payload", ErrUnrecognizedSentence)
	}

	return env, nil
}

// LoginMessage is the payload of an EL sentence. The timestamp is kept raw.
type LoginMessage struct {
	Timestamp string
}

// ParseLogin recognises a login payload: 12 digits with an optional trailing ';'.
func ParseLogin(payload string) (*LoginMessage, error) {
	ts := strings.TrimSuffix(payload, fieldSeparator)
	if len(ts) != timestampLength || !isDigits(ts) {
		return nil, fmt.Errorf("%w: login payload %q", ErrUnrecognizedSentence, payload)
	}
	return &LoginMessage{Timestamp: ts}, nil
}

func isIMEI(s string) bool {
	return len(s) == imeiLength && isDigits(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
