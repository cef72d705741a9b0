package tinygo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"tinygo.org/x/bluetooth"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/gatt"
)

const maxAttributeSize = 512

// peer adapts a bluetooth.Device to conn.Peer.
type peer struct {
	transport *Transport
	address   bluetooth.Address
	name      string

	lock         sync.Mutex
	device       *bluetooth.Device
	disconnected chan struct{}
	down         bool
	chars        map[*gatt.Characteristic]bluetooth.DeviceCharacteristic
	cccds        map[*gatt.Descriptor]*gatt.Characteristic
}

func (p *peer) Dial(ctx context.Context) error {
	type result struct {
		device bluetooth.Device
		err    error
	}
	// Connect cannot be canceled, so it runs in its own goroutine bounded by connectTimeout.
	ch := make(chan result, 1)
	go func() {
		params := bluetooth.ConnectionParams{ConnectionTimeout: bluetooth.NewDuration(connectTimeout)}
		device, err := p.transport.adapter.Connect(p.address, params)
		if err == nil && ctx.Err() != nil {
			if err := device.Disconnect(); err != nil {
				log.Warning("ble: failed to disconnect: %s", err)
			}
		}
		ch <- result{device, err}
	}()

	var r result
	select {
	case r = <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}
	if r.err != nil {
		return fmt.Errorf("ble: failed to connect to %s: %w", p.name, r.err)
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.device = &r.device
	p.disconnected = make(chan struct{})
	p.down = false
	p.chars = make(map[*gatt.Characteristic]bluetooth.DeviceCharacteristic)
	p.cccds = make(map[*gatt.Descriptor]*gatt.Characteristic)
	return nil
}

func (p *peer) Disconnected() <-chan struct{} {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.disconnected
}

func (p *peer) lost() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.disconnected != nil && !p.down {
		p.down = true
		close(p.disconnected)
	}
	p.device = nil
}

func (p *peer) Disconnect() error {
	p.lock.Lock()
	device := p.device
	p.device = nil
	p.lock.Unlock()
	if device == nil {
		return nil
	}
	return device.Disconnect()
}

// Close stops routing the adapter's disconnection reports to p.
func (p *peer) Close() error {
	p.transport.forget(p)
	return nil
}

func (p *peer) Discover() ([]*gatt.Service, error) {
	p.lock.Lock()
	device := p.device
	p.lock.Unlock()
	if device == nil {
		return nil, gatt.ErrNotConnected
	}

	native, err := device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("ble: failed to enumerate device services: %w", err)
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	var services []*gatt.Service
	for _, s := range native {
		id, err := uuid.Parse(s.UUID().String())
		if err != nil {
			continue
		}
		chars, err := s.DiscoverCharacteristics(nil)
		if err != nil {
			return nil, fmt.Errorf("ble: failed to discover service characteristics: %w", err)
		}
		service := gatt.NewService(id)
		for _, c := range chars {
			cid, err := uuid.Parse(c.UUID().String())
			if err != nil {
				continue
			}
			cccd := gatt.NewDescriptor(gatt.ClientConfigurationUUID)
			characteristic := gatt.NewCharacteristic(cid, 0, cccd)
			p.chars[characteristic] = c
			p.cccds[cccd] = characteristic
			service.Characteristics = append(service.Characteristics, characteristic)
		}
		services = append(services, service)
	}
	return services, nil
}

func (p *peer) characteristic(c *gatt.Characteristic) (bluetooth.DeviceCharacteristic, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.device == nil {
		return bluetooth.DeviceCharacteristic{}, gatt.ErrNotConnected
	}
	native, ok := p.chars[c]
	if !ok {
		return bluetooth.DeviceCharacteristic{}, gatt.ErrUnknownAttribute
	}
	return native, nil
}

func (p *peer) Read(c *gatt.Characteristic) ([]byte, error) {
	native, err := p.characteristic(c)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, maxAttributeSize)
	n, err := native.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (p *peer) Write(c *gatt.Characteristic, value []byte) error {
	native, err := p.characteristic(c)
	if err != nil {
		return err
	}
	n, err := deviceCharacteristicWrite(native, value)
	if err != nil {
		return err
	}
	if n != len(value) {
		return fmt.Errorf("ble: failed to write %d bytes", len(value))
	}
	return nil
}

func (p *peer) ReadDescriptor(d *gatt.Descriptor) ([]byte, error) {
	return nil, gatt.ErrNotSupported
}

func (p *peer) WriteDescriptor(d *gatt.Descriptor, value []byte) error {
	return gatt.ErrNotSupported
}

// Subscribe enables notifications. The library picks notifications or indications from the
// characteristic's properties, so indicate is ignored.
func (p *peer) Subscribe(c *gatt.Characteristic, _ bool, handler func([]byte)) error {
	native, err := p.characteristic(c)
	if err != nil {
		return err
	}
	return native.EnableNotifications(handler)
}

func (p *peer) Unsubscribe(c *gatt.Characteristic) error {
	native, err := p.characteristic(c)
	if err != nil {
		return err
	}
	return native.EnableNotifications(nil)
}
