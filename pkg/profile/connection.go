package profile

import (
	"sync"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/gatt"
)

// Callback receives connection state changes. It is invoked from the transport's event
// goroutine, in event order, with no profile locks held; implementations may call back into the
// profile.
type Callback interface {
	OnConnectionStateChanged(status gatt.Status, state gatt.ConnectionState)
}

// CallbackFunc adapts an ordinary function to the Callback interface.
type CallbackFunc func(status gatt.Status, state gatt.ConnectionState)

func (f CallbackFunc) OnConnectionStateChanged(status gatt.Status, state gatt.ConnectionState) {
	f(status, state)
}

// Hooks connect a profile implementation to its Connection.
type Hooks interface {
	// HandleEvent is called for every event from the held link after the Connection has
	// processed it, and before the Callback is notified of state changes.
	HandleEvent(ev gatt.Event)
	// Reset discards client-side state that does not survive a disconnection.
	Reset()
}

type noHooks struct{}

func (noHooks) HandleEvent(gatt.Event) {}
func (noHooks) Reset()                 {}

// Connection manages the link between a single-device profile and its peer.
//
// The connection state is only ever changed by ConnectionStateChanged events from the
// transport. On connect, service discovery is started automatically; profile operations fail
// with ErrServiceNotFound until it completes.
type Connection struct {
	tag       log.Tag
	transport gatt.Transport
	callback  Callback
	hooks     Hooks

	lock   sync.Mutex
	device gatt.Device
	link   gatt.Link
	state  gatt.ConnectionState
	ready  bool
}

// NewConnection creates a Connection that opens links through transport. The callback and hooks
// may be nil.
func NewConnection(tag log.Tag, transport gatt.Transport, callback Callback, hooks Hooks) *Connection {
	if hooks == nil {
		hooks = noHooks{}
	}
	return &Connection{
		tag:       tag,
		transport: transport,
		callback:  callback,
		hooks:     hooks,
	}
}

// Connect initiates a connection to device and returns once the attempt has started.
//
// If the Connection already holds a link to the same device, the link is reconnected rather
// than replaced. A link to a different device is closed first. The autoConnect flag is passed
// to the transport, which decides whether to connect immediately or whenever the device
// becomes reachable.
func (c *Connection) Connect(device gatt.Device, autoConnect bool) error {
	if !device.IsSet() {
		return ErrNoDevice
	}

	c.lock.Lock()
	if c.link != nil && c.device.Same(device) {
		link := c.link
		c.lock.Unlock()
		c.tag.Debug("Trying to use an existing link for %s", device)
		if err := link.Connect(); err != nil {
			return TransportError("reconnect", err)
		}
		return nil
	}

	replaced := c.link
	if replaced != nil {
		c.tag.Info("Replacing link to %s", c.device)
		c.link = nil
		c.device = gatt.Device{}
		c.state = gatt.StateDisconnected
		c.ready = false
	}

	c.tag.Debug("Trying to create a new connection to %s", device)
	link, err := c.transport.Open(device, autoConnect, c.HandleEvent)
	if err == nil {
		c.link = link
		c.device = device
	}
	c.lock.Unlock()

	if replaced != nil {
		if err := replaced.Close(); err != nil {
			c.tag.Warning("Failed to close replaced link: %s", err)
		}
		c.hooks.Reset()
	}
	if err != nil {
		return TransportError("open", err)
	}
	return nil
}

// Disconnect starts disconnecting the held link, if any. The Disconnected state is reported
// later through the Callback. The link is kept and may be reconnected with Connect.
func (c *Connection) Disconnect() error {
	link := c.Link()
	if link == nil {
		return nil
	}
	c.hooks.Reset()
	if err := link.Disconnect(); err != nil {
		return TransportError("disconnect", err)
	}
	return nil
}

// Close releases the held link. It returns false if there was nothing to close. The Connection
// may be reused with Connect afterwards.
func (c *Connection) Close() bool {
	c.lock.Lock()
	link := c.link
	if link == nil {
		c.lock.Unlock()
		return false
	}
	c.link = nil
	c.device = gatt.Device{}
	c.state = gatt.StateDisconnected
	c.ready = false
	c.lock.Unlock()

	if err := link.Close(); err != nil {
		c.tag.Warning("Failed to close link: %s", err)
	}
	c.hooks.Reset()
	return true
}

// Link returns the held link, or nil.
func (c *Connection) Link() gatt.Link {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.link
}

// Device returns the device of the held link. The result is the zero Device if no link is held.
func (c *Connection) Device() gatt.Device {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.device
}

// State returns the connection state last reported by the transport.
func (c *Connection) State() gatt.ConnectionState {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Ready reports whether service discovery has completed on the current connection.
func (c *Connection) Ready() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ready
}

// Characteristic resolves the characteristic of capability on the held link.
func (c *Connection) Characteristic(capability gatt.Capability) (gatt.Link, *gatt.Characteristic, error) {
	link := c.Link()
	if link == nil {
		return nil, nil, ErrNotConnected
	}
	service, characteristic, _ := capability.Resolve(link.Services())
	if service == nil {
		return link, nil, ErrServiceNotFound
	}
	if characteristic == nil {
		return link, nil, ErrCharacteristicNotFound
	}
	return link, characteristic, nil
}

// HandleEvent is the gatt.Handler of every link the Connection opens. Events from links other
// than the one currently held are dropped.
func (c *Connection) HandleEvent(ev gatt.Event) {
	c.lock.Lock()
	if c.link == nil || ev.Link() != c.link {
		c.lock.Unlock()
		c.tag.Debug("Dropping %T from stale link", ev)
		return
	}
	link := c.link
	switch e := ev.(type) {
	case gatt.ConnectionStateChanged:
		c.state = e.State
		if e.State != gatt.StateConnected {
			c.ready = false
		}
	case gatt.ServicesDiscovered:
		c.ready = e.Status.Success()
	}
	c.lock.Unlock()

	switch e := ev.(type) {
	case gatt.ConnectionStateChanged:
		c.tag.Info("Connection to %s is %s (%s)", link.Device(), e.State, e.Status)
		switch e.State {
		case gatt.StateConnected:
			if err := link.DiscoverServices(); err != nil {
				c.tag.Warning("Failed to start service discovery: %s", err)
			}
		case gatt.StateDisconnected:
			c.hooks.Reset()
		}
		c.hooks.HandleEvent(ev)
		if c.callback != nil {
			c.callback.OnConnectionStateChanged(e.Status, e.State)
		}
	case gatt.ServicesDiscovered:
		c.tag.Debug("Services discovered (%s)", e.Status)
		c.hooks.HandleEvent(ev)
	default:
		c.hooks.HandleEvent(ev)
	}
}
