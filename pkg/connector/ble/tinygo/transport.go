// Package tinygo implements gatt.Transport with tinygo.org/x/bluetooth: BlueZ over D-Bus on Linux,
// CoreBluetooth on macOS and WinRT on Windows.
//
// The library does not expose GATT descriptors. Links report a client characteristic
// configuration descriptor on every characteristic, mapped to enabling or disabling
// notifications; other descriptors are not available.
package tinygo

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/connector/ble/conn"
	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/profile"
)

const connectTimeout = 20 * time.Second

var ErrAdapterInvalidID = profile.NewError("the bluetooth adapter ID is invalid", true, false)

// Transport opens links through one bluetooth.Adapter.
type Transport struct {
	adapter *bluetooth.Adapter

	lock   sync.Mutex
	peers  map[*peer]struct{}
	closed bool
}

// NewTransport enables the adapter identified by id, or the default adapter if id is empty.
func NewTransport(id string) (*Transport, error) {
	log.Debug("Creating new BLE adapter")
	adapter, err := newAdapter(id)
	if err != nil {
		return nil, fmt.Errorf("ble: failed to create device: %w", err)
	}
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: failed to enable device: %w", err)
	}
	t := &Transport{adapter: adapter, peers: make(map[*peer]struct{})}
	adapter.SetConnectHandler(t.connectionChanged)
	return t, nil
}

func (t *Transport) Open(device gatt.Device, autoConnect bool, handler gatt.Handler) (gatt.Link, error) {
	address, err := parseAddress(device.Address)
	if err != nil {
		return nil, err
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.closed {
		return nil, errors.New("ble: adapter closed")
	}
	p := &peer{transport: t, address: address, name: device.Address}
	t.peers[p] = struct{}{}
	link := conn.New(device, p, autoConnect, handler)
	if err := link.Connect(); err != nil {
		delete(t.peers, p)
		return nil, err
	}
	return link, nil
}

// Close detaches the transport from the adapter. The adapter itself stays enabled; the library
// offers no way to disable it.
func (t *Transport) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.closed = true
	t.peers = make(map[*peer]struct{})
	return nil
}

func (t *Transport) forget(p *peer) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.peers, p)
}

func (t *Transport) connectionChanged(device bluetooth.Device, connected bool) {
	if connected {
		return
	}
	address := device.Address.String()
	t.lock.Lock()
	var lost []*peer
	for p := range t.peers {
		if strings.EqualFold(p.name, address) {
			lost = append(lost, p)
		}
	}
	t.lock.Unlock()
	for _, p := range lost {
		p.lost()
	}
}
