package mqtt

import "errors"

// Sentinel errors for broker operations. Match with errors.Is.
var (
	// ErrNotConnected is returned while the broker connection is down.
	// Paho reconnects in the background; callers may retry.
	ErrNotConnected = errors.New("mqtt: broker connection down")

	// ErrConnectionFailed wraps the error from the initial Connect.
	ErrConnectionFailed = errors.New("mqtt: cannot reach broker")

	// ErrPublishFailed wraps broker rejections, timeouts, and oversized payloads.
	ErrPublishFailed = errors.New("mqtt: publish not delivered")

	// ErrSubscribeFailed wraps subscription errors, including a nil handler.
	ErrSubscribeFailed = errors.New("mqtt: subscription refused")

	// ErrInvalidQoS is returned for QoS values above 2.
	ErrInvalidQoS = errors.New("mqtt: qos out of range 0-2")

	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
