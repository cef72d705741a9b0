package gatt

import "fmt"

// ConnectionState of a link, numbered as in the Android Bluetooth API.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

var stateNames = map[ConnectionState]string{
	StateDisconnected:  "disconnected",
	StateConnecting:    "connecting",
	StateConnected:     "connected",
	StateDisconnecting: "disconnecting",
}

func (s ConnectionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ConnectionState(%d)", int(s))
}

// Status reports the outcome of an asynchronous GATT operation.
type Status int

const (
	StatusSuccess              Status = 0x00
	StatusReadNotPermitted     Status = 0x02
	StatusWriteNotPermitted    Status = 0x03
	StatusInsufficientAuth     Status = 0x05
	StatusRequestNotSupported  Status = 0x06
	StatusInvalidOffset        Status = 0x07
	StatusInvalidAttributeLen  Status = 0x0d
	StatusInsufficientEncrypt  Status = 0x0f
	StatusConnectionCongested  Status = 0x8f
	StatusConnectionTerminated Status = 0x13
	StatusFailure              Status = 0x101
)

var statusNames = map[Status]string{
	StatusSuccess:              "success",
	StatusReadNotPermitted:     "read not permitted",
	StatusWriteNotPermitted:    "write not permitted",
	StatusInsufficientAuth:     "insufficient authentication",
	StatusRequestNotSupported:  "request not supported",
	StatusInvalidOffset:        "invalid offset",
	StatusInvalidAttributeLen:  "invalid attribute value length",
	StatusInsufficientEncrypt:  "insufficient encryption",
	StatusConnectionCongested:  "connection congested",
	StatusConnectionTerminated: "connection terminated",
	StatusFailure:              "failure",
}

func (s Status) Success() bool {
	return s == StatusSuccess
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status 0x%02x", int(s))
}

// Client characteristic configuration values.
var (
	EnableNotificationValue  = []byte{0x01, 0x00}
	EnableIndicationValue    = []byte{0x02, 0x00}
	DisableNotificationValue = []byte{0x00, 0x00}
)

// NotificationsEnabled reports whether a client characteristic configuration value enables
// notifications or indications.
func NotificationsEnabled(cccd []byte) bool {
	return len(cccd) > 0 && cccd[0]&0x03 != 0
}
