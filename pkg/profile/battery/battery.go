// Package battery implements a client for the Bluetooth SIG Battery Service.
//
// The profile reads the battery level characteristic on demand, subscribes to its notifications
// and reports every decoded [Reading] to a [Callback].
package battery

import (
	"slices"
	"sync"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/profile"
)

const tag = log.Tag("battery")

// Callback receives connection state changes and battery level updates.
type Callback interface {
	profile.Callback
	OnBatteryLevelChanged(level uint8, namespace uint8, description uint16)
}

// Profile is a battery service client for a single device.
type Profile struct {
	*profile.Connection
	callback Callback

	lock      sync.Mutex
	notifying bool
	decodes   []*decode
}

// decode is a battery level measurement waiting for the completions of the characteristic read
// and, when the peer has one, the presentation format descriptor read.
type decode struct {
	level      []byte
	format     []byte
	levelDone  bool
	formatDone bool
}

func (d *decode) done() bool {
	return d.levelDone && d.formatDone
}

// New returns a Profile that connects through transport. The callback may be nil.
func New(transport gatt.Transport, callback Callback) *Profile {
	p := &Profile{callback: callback}
	var connCallback profile.Callback
	if callback != nil {
		connCallback = callback
	}
	p.Connection = profile.NewConnection(tag, transport, connCallback, hooks{p})
	return p
}

// SetNotification enables or disables battery level notifications.
//
// Notifications are registered with the transport and then requested from the peer by writing
// its client characteristic configuration descriptor. The returned error reflects whether that
// write was initiated; its completion is reflected by Notifying.
func (p *Profile) SetNotification(enable bool) error {
	link, c, err := p.Characteristic(gatt.BatteryLevel)
	if err != nil {
		return err
	}
	if err := link.SetCharacteristicNotification(c, enable); err != nil {
		return profile.TransportError("register notification", err)
	}
	_, _, cccd := gatt.BatteryLevelConfiguration.Resolve(link.Services())
	if cccd == nil {
		return profile.ErrDescriptorNotFound
	}
	value := gatt.DisableNotificationValue
	if enable {
		value = gatt.EnableNotificationValue
	}
	if err := link.WriteDescriptor(cccd, value); err != nil {
		return profile.TransportError("write client characteristic configuration", err)
	}
	return nil
}

// Notifying reports whether the peer has acknowledged a request to enable notifications on the
// current connection.
func (p *Profile) Notifying() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.notifying
}

// ReadBatteryLevel reads the battery level characteristic and its presentation format.
//
// The reads complete asynchronously. The returned Reading is decoded from the values cached by
// earlier completions; ErrNoValue is returned if nothing has been cached yet. The fresh Reading
// is delivered to Callback.OnBatteryLevelChanged once both reads have completed.
func (p *Profile) ReadBatteryLevel() (*Reading, error) {
	link, c, err := p.Characteristic(gatt.BatteryLevel)
	if err != nil {
		return nil, err
	}
	format, err := p.read(link, c, &decode{})
	if err != nil {
		return nil, err
	}
	return decodeCached(c.Value(), format)
}

// ReadBatteryLevelFrom decodes the battery level carried by a notification. It returns nil and
// no error when ev is for another characteristic.
//
// The level is re-read from the peer. The returned Reading combines the notified level with the
// presentation format cached by earlier reads. Nothing is reported to the callback.
func (p *Profile) ReadBatteryLevelFrom(ev gatt.CharacteristicChanged) (*Reading, error) {
	if ev.Characteristic == nil || ev.Characteristic.UUID != gatt.BatteryLevelUUID {
		return nil, nil
	}
	link := p.Link()
	if link == nil {
		return nil, profile.ErrNotConnected
	}
	format, err := p.read(link, ev.Characteristic, nil)
	if err != nil {
		return nil, err
	}
	return decodeCached(ev.Value, format)
}

// read initiates the reads a decode needs and returns the currently cached presentation format.
// A non-nil pending decode is tracked until its completions arrive.
func (p *Profile) read(link gatt.Link, c *gatt.Characteristic, pending *decode) ([]byte, error) {
	_, _, formatDescriptor := gatt.BatteryLevelFormat.Resolve(link.Services())
	if pending != nil {
		pending.formatDone = formatDescriptor == nil
		p.lock.Lock()
		p.decodes = append(p.decodes, pending)
		p.lock.Unlock()
	}

	if err := link.ReadCharacteristic(c); err != nil {
		if pending != nil {
			p.untrack(pending)
		}
		return nil, profile.TransportError("read battery level", err)
	}
	if formatDescriptor == nil {
		return nil, nil
	}
	if err := link.ReadDescriptor(formatDescriptor); err != nil {
		tag.Debug("Presentation format unavailable: %s", err)
		if pending != nil {
			p.settle(func(d *decode) bool { return d == pending }, func(d *decode) {
				d.formatDone = true
			})
		}
		return nil, nil
	}
	return formatDescriptor.Value(), nil
}

func decodeCached(level, format []byte) (*Reading, error) {
	reading, err := DecodeReading(level, format)
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (p *Profile) untrack(pending *decode) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.decodes = slices.DeleteFunc(p.decodes, func(d *decode) bool { return d == pending })
}

// settle applies update to the oldest tracked decode that match accepts and reports it once
// both of its reads have completed. It returns false if no decode matched.
func (p *Profile) settle(match func(*decode) bool, update func(*decode)) bool {
	p.lock.Lock()
	i := slices.IndexFunc(p.decodes, match)
	if i < 0 {
		p.lock.Unlock()
		return false
	}
	d := p.decodes[i]
	update(d)
	finished := d.done()
	if finished {
		p.decodes = slices.Delete(p.decodes, i, i+1)
	}
	p.lock.Unlock()

	if finished {
		reading, err := DecodeReading(d.level, d.format)
		if err != nil {
			tag.Warning("Failed to decode battery level: %s", err)
		} else {
			p.report(&reading)
		}
	}
	return true
}

func (p *Profile) report(r *Reading) {
	tag.Debug("Battery level %s", r)
	if p.callback != nil {
		p.callback.OnBatteryLevelChanged(r.Level, r.Namespace, r.Description)
	}
}

func (p *Profile) resolve(capability gatt.Capability) *gatt.Descriptor {
	link := p.Link()
	if link == nil {
		return nil
	}
	_, _, d := capability.Resolve(link.Services())
	return d
}

type hooks struct {
	p *Profile
}

func (h hooks) HandleEvent(ev gatt.Event) {
	p := h.p
	switch e := ev.(type) {
	case gatt.CharacteristicChanged:
		if e.Characteristic == nil || e.Characteristic.UUID != gatt.BatteryLevelUUID {
			tag.Debug("Ignoring notification")
			return
		}
		link := p.Link()
		if link == nil {
			return
		}
		// The notified level stands in if the re-read fails.
		if _, err := p.read(link, e.Characteristic, &decode{level: e.Value}); err != nil {
			tag.Warning("Dropping notification: %s", err)
		}
	case gatt.CharacteristicRead:
		if e.Characteristic == nil || e.Characteristic.UUID != gatt.BatteryLevelUUID {
			tag.Debug("Ignoring read completion")
			return
		}
		if !e.Status.Success() {
			tag.Warning("Battery level read failed: %s", e.Status)
		}
		matched := p.settle(func(d *decode) bool { return !d.levelDone }, func(d *decode) {
			d.levelDone = true
			if e.Status.Success() {
				d.level = e.Value
			}
		})
		if !matched {
			tag.Debug("Ignoring unrequested read completion")
		}
	case gatt.DescriptorRead:
		if e.Descriptor == nil || e.Descriptor != p.resolve(gatt.BatteryLevelFormat) {
			tag.Debug("Ignoring descriptor read completion")
			return
		}
		if !e.Status.Success() {
			tag.Debug("Presentation format read failed: %s", e.Status)
		}
		p.settle(func(d *decode) bool { return !d.formatDone }, func(d *decode) {
			d.formatDone = true
			if e.Status.Success() {
				d.format = e.Value
			}
		})
	case gatt.DescriptorWrite:
		if e.Descriptor == nil || e.Descriptor != p.resolve(gatt.BatteryLevelConfiguration) {
			tag.Debug("Ignoring descriptor write completion")
			return
		}
		if !e.Status.Success() {
			tag.Warning("Client characteristic configuration write failed: %s", e.Status)
			return
		}
		enabled := gatt.NotificationsEnabled(e.Value)
		p.lock.Lock()
		p.notifying = enabled
		p.lock.Unlock()
		tag.Info("Battery level notifications enabled: %v", enabled)
	case gatt.ServicesDiscovered, gatt.ConnectionStateChanged:
		// Handled by the connection.
	case gatt.CharacteristicWrite:
		tag.Debug("Ignoring %T", ev)
	}
}

func (h hooks) Reset() {
	h.p.lock.Lock()
	defer h.p.lock.Unlock()
	h.p.notifying = false
	h.p.decodes = nil
}
