package gatt

import (
	"fmt"

	"github.com/google/uuid"
)

// Capability identifies a semantic capability of a GATT server as the path of UUIDs that leads
// to it. Descriptor is uuid.Nil for capabilities provided by a characteristic value.
type Capability struct {
	Name           string
	Service        uuid.UUID
	Characteristic uuid.UUID
	Descriptor     uuid.UUID
}

var (
	BatteryLevel = Capability{
		Name:           "battery level",
		Service:        BatteryServiceUUID,
		Characteristic: BatteryLevelUUID,
	}
	BatteryLevelConfiguration = Capability{
		Name:           "battery level client characteristic configuration",
		Service:        BatteryServiceUUID,
		Characteristic: BatteryLevelUUID,
		Descriptor:     ClientConfigurationUUID,
	}
	BatteryLevelFormat = Capability{
		Name:           "battery level presentation format",
		Service:        BatteryServiceUUID,
		Characteristic: BatteryLevelUUID,
		Descriptor:     PresentationFormatUUID,
	}
	// BatteryLevelReportReference is reserved for HID-over-GATT battery reporting.
	BatteryLevelReportReference = Capability{
		Name:           "battery level report reference",
		Service:        BatteryServiceUUID,
		Characteristic: BatteryLevelUUID,
		Descriptor:     ReportReferenceUUID,
	}
	AlertLevel = Capability{
		Name:           "alert level",
		Service:        ImmediateAlertServiceUUID,
		Characteristic: AlertLevelUUID,
	}
)

var names = map[uuid.UUID]string{
	BatteryServiceUUID:        "Battery Service",
	BatteryLevelUUID:          "Battery Level",
	PresentationFormatUUID:    "Characteristic Presentation Format",
	ClientConfigurationUUID:   "Client Characteristic Configuration",
	ReportReferenceUUID:       "Report Reference",
	ImmediateAlertServiceUUID: "Immediate Alert",
	AlertLevelUUID:            "Alert Level",
	UUID16(0x1800):            "Generic Access",
	UUID16(0x1801):            "Generic Attribute",
	UUID16(0x180a):            "Device Information",
	UUID16(0x2a00):            "Device Name",
	UUID16(0x2a01):            "Appearance",
	UUID16(0x2a05):            "Service Changed",
	UUID16(0x2901):            "Characteristic User Description",
}

// Name returns a human readable name for well-known UUIDs, or the UUID itself otherwise.
func Name(u uuid.UUID) string {
	if name, ok := names[u]; ok {
		return name
	}
	if short, ok := Short(u); ok {
		return fmt.Sprintf("0x%04x", short)
	}
	return u.String()
}

// Resolve walks the discovered services for the characteristic named by capability. It returns
// the service, characteristic and (when the capability names one) descriptor. Lookups stop at
// the first missing element, leaving the remaining results nil.
func (c Capability) Resolve(services []*Service) (*Service, *Characteristic, *Descriptor) {
	s := FindService(services, c.Service)
	if s == nil {
		return nil, nil, nil
	}
	ch := s.Characteristic(c.Characteristic)
	if ch == nil || c.Descriptor == uuid.Nil {
		return s, ch, nil
	}
	return s, ch, ch.Descriptor(c.Descriptor)
}

func (c Capability) String() string {
	return c.Name
}
