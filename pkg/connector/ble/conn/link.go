// Package conn turns the blocking GATT client of a BLE stack into an asynchronous gatt.Link.
package conn

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tieto/bleprofile/internal/dispatcher"
	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/gatt"
)

const tag = log.Tag("ble")

// RetryInterval is the delay between connection attempts of an auto-connecting link.
var RetryInterval = time.Second

// Link implements gatt.Link on top of a Peer.
//
// GATT operations are queued and run one at a time. Events are delivered to the handler on a
// separate goroutine in the order they occurred.
type Link struct {
	device      gatt.Device
	peer        Peer
	autoConnect bool
	handler     gatt.Handler

	ops    *dispatcher.Dispatcher
	events *dispatcher.Dispatcher

	lock     sync.Mutex
	state    gatt.ConnectionState
	services []*gatt.Service
	notify   map[*gatt.Characteristic]bool
	stop     context.CancelFunc
	running  chan struct{}
	closed   bool
}

// New creates a disconnected Link. Call Connect to start connecting.
func New(device gatt.Device, peer Peer, autoConnect bool, handler gatt.Handler) *Link {
	return &Link{
		device:      device,
		peer:        peer,
		autoConnect: autoConnect,
		handler:     handler,
		ops:         dispatcher.New(device.Address + "/ops"),
		events:      dispatcher.New(device.Address + "/events"),
		notify:      make(map[*gatt.Characteristic]bool),
	}
}

func (l *Link) Device() gatt.Device {
	return l.device
}

// State returns the link's current connection state.
func (l *Link) State() gatt.ConnectionState {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.state
}

// Connect starts a connection attempt unless one is already in progress or established.
func (l *Link) Connect() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return gatt.ErrLinkClosed
	}
	if l.stop != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.stop = cancel
	previous := l.running
	running := make(chan struct{})
	l.running = running
	l.setState(gatt.StateConnecting, gatt.StatusSuccess)
	go l.run(ctx, previous, running)
	return nil
}

func (l *Link) Disconnect() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return gatt.ErrLinkClosed
	}
	if l.stop == nil {
		return nil
	}
	l.stop()
	l.stop = nil
	l.setState(gatt.StateDisconnecting, gatt.StatusSuccess)
	return nil
}

func (l *Link) Close() error {
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return nil
	}
	l.closed = true
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	l.services = nil
	l.lock.Unlock()

	l.ops.Close()
	l.events.Close()
	if closer, ok := l.peer.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			tag.Warning("Failed to release %s: %s", l.device, err)
		}
	}
	tag.Debug("Closed link to %s", l.device)
	return nil
}

// run owns the peer connection until ctx is canceled or, without auto-connect, until the
// first attempt fails or the connection drops.
func (l *Link) run(ctx context.Context, previous, running chan struct{}) {
	defer close(running)
	if previous != nil {
		<-previous
	}

	for {
		tag.Debug("Dialing %s", l.device)
		err := l.peer.Dial(ctx)
		if ctx.Err() != nil {
			if err == nil {
				l.disconnectPeer()
			}
			l.finish(running, gatt.StatusSuccess)
			return
		}
		if err != nil {
			if !l.autoConnect {
				tag.Warning("Failed to connect to %s: %s", l.device, err)
				l.finish(running, gatt.StatusFailure)
				return
			}
			tag.Debug("Connection attempt to %s failed, retrying: %s", l.device, err)
			select {
			case <-ctx.Done():
				l.finish(running, gatt.StatusSuccess)
				return
			case <-time.After(RetryInterval):
			}
			continue
		}

		l.lock.Lock()
		l.setState(gatt.StateConnected, gatt.StatusSuccess)
		l.lock.Unlock()

		select {
		case <-ctx.Done():
			l.disconnectPeer()
			l.finish(running, gatt.StatusSuccess)
			return
		case <-l.peer.Disconnected():
		}

		tag.Info("Lost connection to %s", l.device)
		if !l.autoConnect || ctx.Err() != nil {
			l.finish(running, gatt.StatusConnectionTerminated)
			return
		}
		l.lock.Lock()
		l.services = nil
		l.setState(gatt.StateDisconnected, gatt.StatusConnectionTerminated)
		l.setState(gatt.StateConnecting, gatt.StatusSuccess)
		l.lock.Unlock()
	}
}

func (l *Link) disconnectPeer() {
	if err := l.peer.Disconnect(); err != nil {
		tag.Warning("Failed to disconnect from %s: %s", l.device, err)
	}
}

// finish reports the end of a connection goroutine unless a newer one has replaced it.
func (l *Link) finish(running chan struct{}, status gatt.Status) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.running != running {
		return
	}
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	l.services = nil
	l.setState(gatt.StateDisconnected, status)
}

// setState must be called with l.lock held.
func (l *Link) setState(state gatt.ConnectionState, status gatt.Status) {
	l.state = state
	l.post(gatt.ConnectionStateChanged{Header: gatt.Header{Source: l}, Status: status, State: state})
}

func (l *Link) post(ev gatt.Event) {
	if err := l.events.Submit(func() { l.handler(ev) }); err != nil {
		tag.Debug("Dropping %T: %s", ev, err)
	}
}

// check returns an error if an operation on attr cannot be queued. A nil attr is only checked
// against the connection state.
func (l *Link) check(attr any) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return gatt.ErrLinkClosed
	}
	if l.state != gatt.StateConnected {
		return gatt.ErrNotConnected
	}
	if attr != nil && !l.owns(attr) {
		return gatt.ErrUnknownAttribute
	}
	return nil
}

// owns must be called with l.lock held.
func (l *Link) owns(attr any) bool {
	for _, s := range l.services {
		for _, c := range s.Characteristics {
			if attr == any(c) {
				return true
			}
			for _, d := range c.Descriptors {
				if attr == any(d) {
					return true
				}
			}
		}
	}
	return false
}

// owner returns the characteristic d belongs to.
func (l *Link) owner(d *gatt.Descriptor) *gatt.Characteristic {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, s := range l.services {
		for _, c := range s.Characteristics {
			for _, candidate := range c.Descriptors {
				if candidate == d {
					return c
				}
			}
		}
	}
	return nil
}

func (l *Link) submit(op func()) error {
	if err := l.ops.Submit(op); err != nil {
		return gatt.ErrLinkClosed
	}
	return nil
}

func (l *Link) header() gatt.Header {
	return gatt.Header{Source: l}
}

func (l *Link) DiscoverServices() error {
	if err := l.check(nil); err != nil {
		return err
	}
	return l.submit(func() {
		services, err := l.peer.Discover()
		if err != nil {
			tag.Warning("Service discovery on %s failed: %s", l.device, err)
		} else {
			tag.Debug("Discovered %d services on %s", len(services), l.device)
			l.lock.Lock()
			l.services = services
			l.lock.Unlock()
		}
		l.post(gatt.ServicesDiscovered{Header: l.header(), Status: StatusOf(err)})
	})
}

func (l *Link) Services() []*gatt.Service {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]*gatt.Service(nil), l.services...)
}

func (l *Link) Service(id uuid.UUID) *gatt.Service {
	l.lock.Lock()
	defer l.lock.Unlock()
	return gatt.FindService(l.services, id)
}

// SetCharacteristicNotification decides whether notifications from c are delivered as
// CharacteristicChanged events. It does not contact the device.
func (l *Link) SetCharacteristicNotification(c *gatt.Characteristic, enable bool) error {
	if err := l.check(c); err != nil {
		return err
	}
	l.lock.Lock()
	l.notify[c] = enable
	l.lock.Unlock()
	return nil
}

func (l *Link) ReadCharacteristic(c *gatt.Characteristic) error {
	if err := l.check(c); err != nil {
		return err
	}
	return l.submit(func() {
		value, err := l.peer.Read(c)
		if err != nil {
			tag.Debug("Read of %s failed: %s", gatt.Name(c.UUID), err)
		} else {
			c.SetValue(value)
		}
		l.post(gatt.CharacteristicRead{Header: l.header(), Characteristic: c, Value: value, Status: StatusOf(err)})
	})
}

func (l *Link) WriteCharacteristic(c *gatt.Characteristic, value []byte) error {
	if err := l.check(c); err != nil {
		return err
	}
	value = bytes.Clone(value)
	return l.submit(func() {
		err := l.peer.Write(c, value)
		if err != nil {
			tag.Debug("Write of %s failed: %s", gatt.Name(c.UUID), err)
		} else {
			c.SetValue(value)
		}
		l.post(gatt.CharacteristicWrite{Header: l.header(), Characteristic: c, Status: StatusOf(err)})
	})
}

func (l *Link) ReadDescriptor(d *gatt.Descriptor) error {
	if err := l.check(d); err != nil {
		return err
	}
	return l.submit(func() {
		value, err := l.peer.ReadDescriptor(d)
		if err == nil {
			d.SetValue(value)
		}
		l.post(gatt.DescriptorRead{Header: l.header(), Descriptor: d, Value: value, Status: StatusOf(err)})
	})
}

// WriteDescriptor writes d. Writes to a client characteristic configuration descriptor
// subscribe to or unsubscribe from the owning characteristic.
func (l *Link) WriteDescriptor(d *gatt.Descriptor, value []byte) error {
	if err := l.check(d); err != nil {
		return err
	}
	c := l.owner(d)
	if c == nil {
		return gatt.ErrUnknownAttribute
	}
	value = bytes.Clone(value)
	return l.submit(func() {
		var err error
		if d.UUID == gatt.ClientConfigurationUUID {
			err = l.configure(c, value)
		} else {
			err = l.peer.WriteDescriptor(d, value)
		}
		if err != nil {
			tag.Debug("Write of %s failed: %s", gatt.Name(d.UUID), err)
		} else {
			d.SetValue(value)
		}
		l.post(gatt.DescriptorWrite{Header: l.header(), Descriptor: d, Value: value, Status: StatusOf(err)})
	})
}

func (l *Link) configure(c *gatt.Characteristic, value []byte) error {
	if !gatt.NotificationsEnabled(value) {
		return l.peer.Unsubscribe(c)
	}
	indicate := value[0]&0x01 == 0
	return l.peer.Subscribe(c, indicate, func(v []byte) {
		l.notified(c, v)
	})
}

func (l *Link) notified(c *gatt.Characteristic, value []byte) {
	l.lock.Lock()
	enabled := l.notify[c] && !l.closed
	l.lock.Unlock()
	if !enabled {
		tag.Debug("Dropping unregistered notification from %s", gatt.Name(c.UUID))
		return
	}
	value = bytes.Clone(value)
	c.SetValue(value)
	l.post(gatt.CharacteristicChanged{Header: l.header(), Characteristic: c, Value: value})
}
