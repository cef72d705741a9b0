package gatt

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrLinkClosed is returned by Link methods after Close.
	ErrLinkClosed = errors.New("ble: link closed")
	// ErrNotConnected is returned by GATT operations issued while the link is down.
	ErrNotConnected = errors.New("ble: link not connected")
	// ErrUnknownAttribute is returned when an attribute does not belong to the link's
	// discovered services.
	ErrUnknownAttribute = errors.New("ble: attribute not discovered on this link")
	// ErrNotSupported is returned for operations the backing BLE stack cannot perform.
	ErrNotSupported = errors.New("ble: operation not supported by this transport")
)

// Device identifies a remote peer. Two devices are the same peer when their addresses match.
type Device struct {
	Address string
	Name    string
}

// IsSet reports whether d identifies a peer.
func (d Device) IsSet() bool {
	return d.Address != ""
}

// Same reports whether d and other identify the same peer.
func (d Device) Same(other Device) bool {
	return d.IsSet() && strings.EqualFold(d.Address, other.Address)
}

func (d Device) String() string {
	if d.Name == "" {
		return d.Address
	}
	return d.Name + " (" + d.Address + ")"
}

// Transport opens links to remote devices.
type Transport interface {
	// Open creates a link to device and starts connecting. With autoConnect set, the transport
	// keeps trying until the device becomes reachable; otherwise a single attempt is made and
	// its failure is reported as a Disconnected event. Events for the link go to handler.
	Open(device Device, autoConnect bool, handler Handler) (Link, error)
	// Close releases the underlying adapter.
	Close() error
}

// Link is the transport-level connection to one device. All methods return once the operation
// has been initiated; completion is reported through the link's Handler.
type Link interface {
	Device() Device

	// Connect reconnects a link that has been disconnected, reusing its resources.
	Connect() error
	// Disconnect starts tearing the connection down. The link can be reconnected later.
	Disconnect() error
	// Close disconnects and releases the link. Events still queued for delivery are discarded.
	Close() error

	DiscoverServices() error
	// Services returns the services found by the last successful discovery.
	Services() []*Service
	// Service returns the discovered service with the given UUID, or nil.
	Service(id uuid.UUID) *Service

	// SetCharacteristicNotification registers local interest in notifications from c.
	// Notifications are only sent by the peer once its client characteristic configuration
	// descriptor has been written.
	SetCharacteristicNotification(c *Characteristic, enable bool) error
	ReadCharacteristic(c *Characteristic) error
	WriteCharacteristic(c *Characteristic, value []byte) error
	ReadDescriptor(d *Descriptor) error
	WriteDescriptor(d *Descriptor, value []byte) error
}
