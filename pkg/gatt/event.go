package gatt

// Event is an asynchronous notification from a Link. The concrete types below are the only
// implementations; consumers handle them with a type switch.
type Event interface {
	// Link returns the link that produced the event. Profiles use it to discard events that
	// belong to a link they no longer hold.
	Link() Link
	isEvent()
}

// Handler receives the events of one link. Transports call it from a single goroutine, in the
// order the events occurred.
type Handler func(Event)

// Header carries the fields common to every event.
type Header struct {
	Source Link
}

func (h Header) Link() Link { return h.Source }

func (Header) isEvent() {}

// ConnectionStateChanged reports a transition of the link's connection state. Status is
// non-success when a connection attempt failed or the link was lost.
type ConnectionStateChanged struct {
	Header
	Status Status
	State  ConnectionState
}

// ServicesDiscovered completes Link.DiscoverServices.
type ServicesDiscovered struct {
	Header
	Status Status
}

// CharacteristicRead completes Link.ReadCharacteristic.
type CharacteristicRead struct {
	Header
	Characteristic *Characteristic
	Value          []byte
	Status         Status
}

// CharacteristicWrite completes Link.WriteCharacteristic.
type CharacteristicWrite struct {
	Header
	Characteristic *Characteristic
	Status         Status
}

// DescriptorRead completes Link.ReadDescriptor.
type DescriptorRead struct {
	Header
	Descriptor *Descriptor
	Value      []byte
	Status     Status
}

// DescriptorWrite completes Link.WriteDescriptor. Value is the value that was written.
type DescriptorWrite struct {
	Header
	Descriptor *Descriptor
	Value      []byte
	Status     Status
}

// CharacteristicChanged delivers a notification or indication.
type CharacteristicChanged struct {
	Header
	Characteristic *Characteristic
	Value          []byte
}
