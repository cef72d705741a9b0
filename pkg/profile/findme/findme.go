// Package findme implements the client side of the Find Me profile: it makes a remote device
// alert (beep, blink, vibrate) by writing its Immediate Alert service's Alert Level.
package findme

import (
	"sync"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/profile"
)

const tag = log.Tag("findme")

// Profile is a Find Me client for a single device.
type Profile struct {
	*profile.Connection

	lock  sync.Mutex
	state State
}

// New returns a Profile that connects through transport. The callback may be nil.
func New(transport gatt.Transport, callback profile.Callback) *Profile {
	p := &Profile{}
	p.Connection = profile.NewConnection(tag, transport, callback, hooks{p})
	return p
}

// FindMe asks the remote device to alert at level.
//
// Levels other than NoAlert, Mid and High are rejected with ErrInvalidAlertLevel and nothing is
// written. AlertLevel reports the new level once the peer has acknowledged the write.
func (p *Profile) FindMe(level AlertLevel) error {
	if !level.Valid() {
		return ErrInvalidAlertLevel
	}
	link, c, err := p.Characteristic(gatt.AlertLevel)
	if err != nil {
		return err
	}

	p.apply(WriteStarted{Level: level})
	if err := link.WriteCharacteristic(c, []byte{uint8(level)}); err != nil {
		p.apply(WriteRejected{})
		return profile.TransportError("write alert level", err)
	}
	tag.Debug("Requested alert level %s", level)
	return nil
}

// AlertLevel returns the last alert level the peer acknowledged on the current connection. It
// does not query the device.
func (p *Profile) AlertLevel() AlertLevel {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.state.Current
}

// ConnectedDevices is not supported by a single-device profile. Query the adapter's connection
// manager instead.
func (p *Profile) ConnectedDevices() ([]gatt.Device, error) {
	return nil, profile.ErrUnsupported
}

// DevicesMatchingConnectionStates is not supported by a single-device profile.
func (p *Profile) DevicesMatchingConnectionStates(states ...gatt.ConnectionState) ([]gatt.Device, error) {
	return nil, profile.ErrUnsupported
}

// ConnectionState is not supported by a single-device profile. Use State for the profile's own
// link.
func (p *Profile) ConnectionState(device gatt.Device) (gatt.ConnectionState, error) {
	return gatt.StateDisconnected, profile.ErrUnsupported
}

func (p *Profile) apply(in Input) {
	p.lock.Lock()
	defer p.lock.Unlock()
	prior := p.state.Current
	p.state = Next(p.state, in)
	if p.state.Current != prior {
		tag.Info("Alert level changed from %s to %s", prior, p.state.Current)
	}
}

type hooks struct {
	p *Profile
}

func (h hooks) HandleEvent(ev gatt.Event) {
	switch e := ev.(type) {
	case gatt.CharacteristicWrite:
		if e.Characteristic == nil || e.Characteristic.UUID != gatt.AlertLevelUUID {
			tag.Debug("Ignoring write completion")
			return
		}
		if !e.Status.Success() {
			tag.Warning("Alert level write failed: %s", e.Status)
		}
		h.p.apply(WriteCompleted{Status: e.Status})
	case gatt.ServicesDiscovered, gatt.ConnectionStateChanged:
		// Handled by the connection.
	case gatt.CharacteristicRead, gatt.CharacteristicChanged, gatt.DescriptorRead, gatt.DescriptorWrite:
		tag.Debug("Ignoring %T", ev)
	}
}

func (h hooks) Reset() {
	h.p.apply(Reset{})
}
