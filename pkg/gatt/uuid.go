package gatt

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// baseUUID is the Bluetooth SIG base UUID that 16- and 32-bit assigned numbers expand into.
var baseUUID = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

var (
	BatteryServiceUUID        = uuid.MustParse("0000180f-0000-1000-8000-00805f9b34fb")
	BatteryLevelUUID          = uuid.MustParse("00002a19-0000-1000-8000-00805f9b34fb")
	PresentationFormatUUID    = uuid.MustParse("00002904-0000-1000-8000-00805f9b34fb")
	ClientConfigurationUUID   = uuid.MustParse("00002902-0000-1000-8000-00805f9b34fb")
	ReportReferenceUUID       = uuid.MustParse("00002908-0000-1000-8000-00805f9b34fb")
	ImmediateAlertServiceUUID = uuid.MustParse("00001802-0000-1000-8000-00805f9b34fb")
	AlertLevelUUID            = uuid.MustParse("00002a06-0000-1000-8000-00805f9b34fb")
)

// UUID16 expands a 16-bit assigned number into its 128-bit form.
func UUID16(n uint16) uuid.UUID {
	return UUID32(uint32(n))
}

// UUID32 expands a 32-bit assigned number into its 128-bit form.
func UUID32(n uint32) uuid.UUID {
	u := baseUUID
	binary.BigEndian.PutUint32(u[:4], n)
	return u
}

// Short returns the 16-bit assigned number of u, if u is derived from the SIG base UUID.
func Short(u uuid.UUID) (uint16, bool) {
	if u[0] != 0 || u[1] != 0 || [12]byte(u[4:]) != [12]byte(baseUUID[4:]) {
		return 0, false
	}
	return binary.BigEndian.Uint16(u[2:4]), true
}

// FromLittleEndian converts the little-endian byte order used on the air (and by HCI-level
// stacks) into a UUID. Inputs of 2, 4 or 16 bytes are accepted.
func FromLittleEndian(b []byte) (uuid.UUID, bool) {
	switch len(b) {
	case 2:
		return UUID16(binary.LittleEndian.Uint16(b)), true
	case 4:
		return UUID32(binary.LittleEndian.Uint32(b)), true
	case 16:
		var u uuid.UUID
		for i := range b {
			u[15-i] = b[i]
		}
		return u, true
	}
	return uuid.Nil, false
}
