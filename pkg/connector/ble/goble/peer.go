package goble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-ble/ble"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/connector/ble/conn"
	"github.com/tieto/bleprofile/pkg/gatt"
)

// peer adapts a go-ble client to conn.Peer.
type peer struct {
	device  ble.Device
	address string

	lock        sync.Mutex
	client      ble.Client
	chars       map[*gatt.Characteristic]*ble.Characteristic
	descriptors map[*gatt.Descriptor]*ble.Descriptor
	indications map[*gatt.Characteristic]bool
}

func newPeer(device ble.Device, address string) *peer {
	return &peer{device: device, address: address}
}

func (p *peer) Dial(ctx context.Context) error {
	client, err := p.device.Dial(ctx, ble.NewAddr(p.address))
	if err != nil {
		return fmt.Errorf("ble: failed to dial %s: %w", p.address, err)
	}
	p.lock.Lock()
	p.client = client
	p.chars = make(map[*gatt.Characteristic]*ble.Characteristic)
	p.descriptors = make(map[*gatt.Descriptor]*ble.Descriptor)
	p.indications = make(map[*gatt.Characteristic]bool)
	p.lock.Unlock()
	return nil
}

func (p *peer) Disconnected() <-chan struct{} {
	client := p.current()
	// Older go-ble clients cannot report link loss. The returned nil channel never fires.
	if notifier, ok := client.(interface{ Disconnected() <-chan struct{} }); ok {
		return notifier.Disconnected()
	}
	log.Debug("ble: client for %s does not report disconnections", p.address)
	return nil
}

func (p *peer) Disconnect() error {
	p.lock.Lock()
	client := p.client
	p.client = nil
	p.lock.Unlock()
	if client == nil {
		return nil
	}
	err1 := client.ClearSubscriptions()
	err2 := client.CancelConnection()
	return errors.Join(err1, err2)
}

func (p *peer) current() ble.Client {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.client
}

func (p *peer) connected() (ble.Client, error) {
	client := p.current()
	if client == nil {
		return nil, gatt.ErrNotConnected
	}
	return client, nil
}

func (p *peer) Discover() ([]*gatt.Service, error) {
	client, err := p.connected()
	if err != nil {
		return nil, err
	}
	profile, err := client.DiscoverProfile(true)
	if err != nil {
		return nil, fmt.Errorf("ble: failed to discover profile: %w", attError(err))
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	var services []*gatt.Service
	for _, s := range profile.Services {
		id, ok := gatt.FromLittleEndian(s.UUID)
		if !ok {
			log.Debug("ble: skipping service with malformed UUID %s", s.UUID)
			continue
		}
		service := gatt.NewService(id)
		for _, c := range s.Characteristics {
			cid, ok := gatt.FromLittleEndian(c.UUID)
			if !ok {
				continue
			}
			characteristic := gatt.NewCharacteristic(cid, gatt.Property(c.Property))
			for _, d := range c.Descriptors {
				did, ok := gatt.FromLittleEndian(d.UUID)
				if !ok {
					continue
				}
				descriptor := gatt.NewDescriptor(did)
				characteristic.Descriptors = append(characteristic.Descriptors, descriptor)
				p.descriptors[descriptor] = d
			}
			service.Characteristics = append(service.Characteristics, characteristic)
			p.chars[characteristic] = c
		}
		services = append(services, service)
	}
	return services, nil
}

func (p *peer) characteristic(c *gatt.Characteristic) (ble.Client, *ble.Characteristic, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.client == nil {
		return nil, nil, gatt.ErrNotConnected
	}
	native, ok := p.chars[c]
	if !ok {
		return nil, nil, gatt.ErrUnknownAttribute
	}
	return p.client, native, nil
}

func (p *peer) descriptor(d *gatt.Descriptor) (ble.Client, *ble.Descriptor, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.client == nil {
		return nil, nil, gatt.ErrNotConnected
	}
	native, ok := p.descriptors[d]
	if !ok {
		return nil, nil, gatt.ErrUnknownAttribute
	}
	return p.client, native, nil
}

func (p *peer) Read(c *gatt.Characteristic) ([]byte, error) {
	client, native, err := p.characteristic(c)
	if err != nil {
		return nil, err
	}
	value, err := client.ReadCharacteristic(native)
	return value, attError(err)
}

func (p *peer) Write(c *gatt.Characteristic, value []byte) error {
	client, native, err := p.characteristic(c)
	if err != nil {
		return err
	}
	noResponse := c.Property&gatt.PropWrite == 0 && c.Property&gatt.PropWriteNoRsp != 0
	return attError(client.WriteCharacteristic(native, value, noResponse))
}

func (p *peer) ReadDescriptor(d *gatt.Descriptor) ([]byte, error) {
	client, native, err := p.descriptor(d)
	if err != nil {
		return nil, err
	}
	value, err := client.ReadDescriptor(native)
	return value, attError(err)
}

func (p *peer) WriteDescriptor(d *gatt.Descriptor, value []byte) error {
	client, native, err := p.descriptor(d)
	if err != nil {
		return err
	}
	return attError(client.WriteDescriptor(native, value))
}

func (p *peer) Subscribe(c *gatt.Characteristic, indicate bool, handler func([]byte)) error {
	client, native, err := p.characteristic(c)
	if err != nil {
		return err
	}
	if err := client.Subscribe(native, indicate, handler); err != nil {
		return attError(err)
	}
	p.lock.Lock()
	p.indications[c] = indicate
	p.lock.Unlock()
	return nil
}

func (p *peer) Unsubscribe(c *gatt.Characteristic) error {
	client, native, err := p.characteristic(c)
	if err != nil {
		return err
	}
	p.lock.Lock()
	indicate := p.indications[c]
	delete(p.indications, c)
	p.lock.Unlock()
	return attError(client.Unsubscribe(native, indicate))
}

// attError preserves the ATT error code of a failed request so that it surfaces as the status of
// the completion event.
func attError(err error) error {
	var code ble.ATTError
	if errors.As(err, &code) {
		return fmt.Errorf("%w: %w", conn.StatusError(gatt.Status(code)), err)
	}
	return err
}
