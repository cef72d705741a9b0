package gatt

import (
	"bytes"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Property is the characteristic properties bit field.
type Property uint8

const (
	PropBroadcast   Property = 0x01
	PropRead        Property = 0x02
	PropWriteNoRsp  Property = 0x04
	PropWrite       Property = 0x08
	PropNotify      Property = 0x10
	PropIndicate    Property = 0x20
	PropSignedWrite Property = 0x40
	PropExtended    Property = 0x80
)

var propertyNames = []struct {
	p    Property
	name string
}{
	{PropBroadcast, "broadcast"},
	{PropRead, "read"},
	{PropWriteNoRsp, "write-without-response"},
	{PropWrite, "write"},
	{PropNotify, "notify"},
	{PropIndicate, "indicate"},
	{PropSignedWrite, "signed-write"},
	{PropExtended, "extended"},
}

func (p Property) String() string {
	var names []string
	for _, entry := range propertyNames {
		if p&entry.p != 0 {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, "|")
}

// value is a thread-safe cached attribute value.
type value struct {
	lock sync.RWMutex
	data []byte
}

func (v *value) get() []byte {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return bytes.Clone(v.data)
}

func (v *value) set(data []byte) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.data = bytes.Clone(data)
}

// Descriptor is a discovered characteristic descriptor.
type Descriptor struct {
	UUID  uuid.UUID
	value value
}

func NewDescriptor(id uuid.UUID) *Descriptor {
	return &Descriptor{UUID: id}
}

// Value returns a copy of the most recently read or written value.
func (d *Descriptor) Value() []byte {
	return d.value.get()
}

// SetValue updates the cached value. Transports call this before posting the corresponding
// completion event.
func (d *Descriptor) SetValue(data []byte) {
	d.value.set(data)
}

// Characteristic is a discovered characteristic and its descriptors.
type Characteristic struct {
	UUID        uuid.UUID
	Property    Property
	Descriptors []*Descriptor
	value       value
}

func NewCharacteristic(id uuid.UUID, property Property, descriptors ...*Descriptor) *Characteristic {
	return &Characteristic{UUID: id, Property: property, Descriptors: descriptors}
}

// Descriptor returns the descriptor with the given UUID, or nil.
func (c *Characteristic) Descriptor(id uuid.UUID) *Descriptor {
	for _, d := range c.Descriptors {
		if d.UUID == id {
			return d
		}
	}
	return nil
}

// Value returns a copy of the most recently read, written or notified value.
func (c *Characteristic) Value() []byte {
	return c.value.get()
}

func (c *Characteristic) SetValue(data []byte) {
	c.value.set(data)
}

// Service is a discovered primary service.
type Service struct {
	UUID            uuid.UUID
	Characteristics []*Characteristic
}

func NewService(id uuid.UUID, characteristics ...*Characteristic) *Service {
	return &Service{UUID: id, Characteristics: characteristics}
}

// Characteristic returns the characteristic with the given UUID, or nil.
func (s *Service) Characteristic(id uuid.UUID) *Characteristic {
	for _, c := range s.Characteristics {
		if c.UUID == id {
			return c
		}
	}
	return nil
}

// FindService returns the service with the given UUID, or nil.
func FindService(services []*Service, id uuid.UUID) *Service {
	for _, s := range services {
		if s.UUID == id {
			return s
		}
	}
	return nil
}
