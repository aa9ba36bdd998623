package protocol

import (
	"errors"
	"fmt"
)

// DecodeError indicates an inbound payload that cannot be decoded.
type DecodeError struct {
	// Packet names the packet being decoded
	Packet string

	// Payload is the offending payload
	Payload string

	// Reason describes what is wrong with it
	Reason string

	// Err is the underlying error, if any
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s %q: %s: %v", e.Packet, e.Payload, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s %q: %s", e.Packet, e.Payload, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TopicError indicates a topic that does not follow the OTA topic grammar.
type TopicError struct {
	Topic  string
	Reason string
}

func (e *TopicError) Error() string {
	return fmt.Sprintf("topic %q: %s", e.Topic, e.Reason)
}

// IsDecodeError returns true if err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsTopicError returns true if err is or wraps a TopicError.
func IsTopicError(err error) bool {
	var te *TopicError
	return errors.As(err, &te)
}
