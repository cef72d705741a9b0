// Package gatttest provides an in-memory gatt.Transport for exercising profiles without a BLE
// adapter.
//
// A FakeLink records every operation and never produces events on its own: tests decide when
// (and whether) completions arrive by calling the Emit helpers, which invoke the profile's handler
// synchronously.
package gatttest

import (
	"bytes"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/tieto/bleprofile/pkg/gatt"
)

// ErrInjected is a convenience error for failure injection.
var ErrInjected = errors.New("gatttest: injected failure")

// Write records a characteristic or descriptor write.
type Write struct {
	Characteristic *gatt.Characteristic
	Descriptor     *gatt.Descriptor
	Value          []byte
}

// FakeTransport hands out FakeLinks.
type FakeTransport struct {
	// Services is copied into every new link.
	Services []*gatt.Service
	// OpenErr, when set, makes Open fail.
	OpenErr error

	lock   sync.Mutex
	links  []*FakeLink
	closed bool
}

func NewTransport(services ...*gatt.Service) *FakeTransport {
	return &FakeTransport{Services: services}
}

func (t *FakeTransport) Open(device gatt.Device, autoConnect bool, handler gatt.Handler) (gatt.Link, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.OpenErr != nil {
		return nil, t.OpenErr
	}
	link := NewLink(device, handler, t.Services...)
	link.AutoConnect = autoConnect
	t.links = append(t.links, link)
	return link, nil
}

func (t *FakeTransport) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.closed = true
	return nil
}

// Links returns every link opened so far.
func (t *FakeTransport) Links() []*FakeLink {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]*FakeLink(nil), t.links...)
}

// Last returns the most recently opened link, or nil.
func (t *FakeTransport) Last() *FakeLink {
	t.lock.Lock()
	defer t.lock.Unlock()
	if len(t.links) == 0 {
		return nil
	}
	return t.links[len(t.links)-1]
}

// FakeLink is a scriptable gatt.Link.
type FakeLink struct {
	AutoConnect bool

	// Failure injection. A nil error means the operation is accepted.
	ConnectErr         error
	DisconnectErr      error
	DiscoverErr        error
	NotificationErr    error
	ReadErr            error
	WriteErr           error
	DescriptorReadErr  error
	DescriptorWriteErr error

	lock     sync.Mutex
	device   gatt.Device
	handler  gatt.Handler
	services []*gatt.Service

	notifying   map[*gatt.Characteristic]bool
	writes      []Write
	descWrites  []Write
	reads       []*gatt.Characteristic
	descReads   []*gatt.Descriptor
	connects    int
	disconnects int
	discoveries int
	closed      bool
}

func NewLink(device gatt.Device, handler gatt.Handler, services ...*gatt.Service) *FakeLink {
	return &FakeLink{
		device:    device,
		handler:   handler,
		services:  services,
		notifying: make(map[*gatt.Characteristic]bool),
	}
}

func (l *FakeLink) Device() gatt.Device {
	return l.device
}

func (l *FakeLink) Connect() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return gatt.ErrLinkClosed
	}
	l.connects++
	return l.ConnectErr
}

func (l *FakeLink) Disconnect() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.disconnects++
	return l.DisconnectErr
}

func (l *FakeLink) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.closed = true
	return nil
}

func (l *FakeLink) DiscoverServices() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.discoveries++
	return l.DiscoverErr
}

func (l *FakeLink) Services() []*gatt.Service {
	return l.services
}

func (l *FakeLink) Service(id uuid.UUID) *gatt.Service {
	return gatt.FindService(l.services, id)
}

func (l *FakeLink) SetCharacteristicNotification(c *gatt.Characteristic, enable bool) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.NotificationErr != nil {
		return l.NotificationErr
	}
	l.notifying[c] = enable
	return nil
}

func (l *FakeLink) ReadCharacteristic(c *gatt.Characteristic) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.reads = append(l.reads, c)
	return l.ReadErr
}

func (l *FakeLink) WriteCharacteristic(c *gatt.Characteristic, value []byte) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.WriteErr != nil {
		return l.WriteErr
	}
	l.writes = append(l.writes, Write{Characteristic: c, Value: bytes.Clone(value)})
	return nil
}

func (l *FakeLink) ReadDescriptor(d *gatt.Descriptor) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.descReads = append(l.descReads, d)
	return l.DescriptorReadErr
}

func (l *FakeLink) WriteDescriptor(d *gatt.Descriptor, value []byte) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.DescriptorWriteErr != nil {
		return l.DescriptorWriteErr
	}
	l.descWrites = append(l.descWrites, Write{Descriptor: d, Value: bytes.Clone(value)})
	return nil
}

// Writes returns the accepted characteristic writes.
func (l *FakeLink) Writes() []Write {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]Write(nil), l.writes...)
}

// DescriptorWrites returns the accepted descriptor writes.
func (l *FakeLink) DescriptorWrites() []Write {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]Write(nil), l.descWrites...)
}

// Reads returns every characteristic read attempt.
func (l *FakeLink) Reads() []*gatt.Characteristic {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]*gatt.Characteristic(nil), l.reads...)
}

// DescriptorReads returns every descriptor read attempt.
func (l *FakeLink) DescriptorReads() []*gatt.Descriptor {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]*gatt.Descriptor(nil), l.descReads...)
}

func (l *FakeLink) Notifying(c *gatt.Characteristic) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.notifying[c]
}

func (l *FakeLink) Connects() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.connects
}

func (l *FakeLink) Disconnects() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.disconnects
}

func (l *FakeLink) Discoveries() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.discoveries
}

func (l *FakeLink) Closed() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.closed
}

// Emit delivers ev to the link's handler on the calling goroutine.
func (l *FakeLink) Emit(ev gatt.Event) {
	l.handler(ev)
}

func (l *FakeLink) header() gatt.Header {
	return gatt.Header{Source: l}
}

func (l *FakeLink) EmitState(state gatt.ConnectionState, status gatt.Status) {
	l.Emit(gatt.ConnectionStateChanged{Header: l.header(), Status: status, State: state})
}

func (l *FakeLink) EmitServicesDiscovered(status gatt.Status) {
	l.Emit(gatt.ServicesDiscovered{Header: l.header(), Status: status})
}

// EmitChanged updates the cached value of c and delivers a notification.
func (l *FakeLink) EmitChanged(c *gatt.Characteristic, value []byte) {
	c.SetValue(value)
	l.Emit(gatt.CharacteristicChanged{Header: l.header(), Characteristic: c, Value: bytes.Clone(value)})
}

// EmitRead completes a characteristic read. A successful completion updates the cached value of
// c, as a real link does; reads never touch the cache before their completion.
func (l *FakeLink) EmitRead(c *gatt.Characteristic, value []byte, status gatt.Status) {
	if status.Success() {
		c.SetValue(value)
	}
	l.Emit(gatt.CharacteristicRead{Header: l.header(), Characteristic: c, Value: bytes.Clone(value), Status: status})
}

func (l *FakeLink) EmitWrite(c *gatt.Characteristic, status gatt.Status) {
	l.Emit(gatt.CharacteristicWrite{Header: l.header(), Characteristic: c, Status: status})
}

func (l *FakeLink) EmitDescriptorRead(d *gatt.Descriptor, value []byte, status gatt.Status) {
	if status.Success() {
		d.SetValue(value)
	}
	l.Emit(gatt.DescriptorRead{Header: l.header(), Descriptor: d, Value: bytes.Clone(value), Status: status})
}

func (l *FakeLink) EmitDescriptorWrite(d *gatt.Descriptor, value []byte, status gatt.Status) {
	l.Emit(gatt.DescriptorWrite{Header: l.header(), Descriptor: d, Value: bytes.Clone(value), Status: status})
}

// BatteryService builds a battery service. withCCCD and withFormat control which descriptors
// the battery level characteristic carries.
func BatteryService(withCCCD, withFormat bool) *gatt.Service {
	var descriptors []*gatt.Descriptor
	if withCCCD {
		descriptors = append(descriptors, gatt.NewDescriptor(gatt.ClientConfigurationUUID))
	}
	if withFormat {
		descriptors = append(descriptors, gatt.NewDescriptor(gatt.PresentationFormatUUID))
	}
	level := gatt.NewCharacteristic(gatt.BatteryLevelUUID, gatt.PropRead|gatt.PropNotify, descriptors...)
	return gatt.NewService(gatt.BatteryServiceUUID, level)
}

// ImmediateAlertService builds an immediate alert service with its alert level characteristic.
func ImmediateAlertService() *gatt.Service {
	return gatt.NewService(gatt.ImmediateAlertServiceUUID,
		gatt.NewCharacteristic(gatt.AlertLevelUUID, gatt.PropWriteNoRsp))
}
