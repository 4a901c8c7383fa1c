package bridge

import "encoding/json"

// StatusCode tags a text-channel response envelope.
type StatusCode int

const (
	StatusError    StatusCode = -2
	StatusNotFound StatusCode = -1
	StatusOK       StatusCode = 1
)

// Envelope is the tagged response returned on the text channel. It is
// always well formed, even when the call it reports on failed.
type Envelope struct {
	StatusCode   StatusCode `json:"status_code"`
	Value        any        `json:"value"`
	ErrorMessage *string    `json:"error_message"`
}

// OKEnvelope reports success, optionally carrying a value.
func OKEnvelope(value any) []byte {
	return marshalEnvelope(Envelope{StatusCode: StatusOK, Value: value})
}

// NotFoundEnvelope reports an absent result.
func NotFoundEnvelope() []byte {
	return marshalEnvelope(Envelope{StatusCode: StatusNotFound})
}

// ErrorEnvelope reports a failed call with a human-readable message.
func ErrorEnvelope(err error) []byte {
	message := err.Error()
	return marshalEnvelope(Envelope{StatusCode: StatusError, ErrorMessage: &message})
}

func marshalEnvelope(e Envelope) []byte {
	out, err := json.Marshal(e)
	if err != nil {
		// Unreachable for this shape, but the text channel must always
		// produce a well-formed envelope.
		return []byte(`{"status_code":-2,"value":null,"error_message":"failed to encode response envelope"}`)
	}
	return out
}
