// Package goble implements gatt.Transport with github.com/go-ble/ble: raw HCI sockets on Linux and
// CoreBluetooth on macOS.
package goble

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/connector/ble/conn"
	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/profile"
)

const bleTimeout = 20 * time.Second

var ErrAdapterInvalidID = profile.NewError("the bluetooth adapter ID is invalid", true, false)

// Transport opens links through one go-ble device.
type Transport struct {
	lock   sync.Mutex
	device ble.Device
}

// NewTransport initializes the adapter identified by id, or the default adapter if id is empty.
func NewTransport(id string) (*Transport, error) {
	log.Debug("Creating new BLE adapter")
	device, err := newDevice(id)
	if err != nil {
		return nil, fmt.Errorf("ble: failed to enable device: %w", err)
	}
	return &Transport{device: device}, nil
}

func (t *Transport) Open(device gatt.Device, autoConnect bool, handler gatt.Handler) (gatt.Link, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.device == nil {
		return nil, errors.New("ble: adapter closed")
	}
	link := conn.New(device, newPeer(t.device, device.Address), autoConnect, handler)
	if err := link.Connect(); err != nil {
		return nil, err
	}
	return link, nil
}

// Close stops the adapter. It does not close links opened through it; do that first.
func (t *Transport) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.device == nil {
		return nil
	}
	device := t.device
	t.device = nil
	if err := device.Stop(); err != nil {
		return fmt.Errorf("ble: failed to stop device: %w", err)
	}
	log.Debug("Closed BLE adapter")
	return nil
}
