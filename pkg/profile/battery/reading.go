package battery

import (
	"encoding/binary"
	"fmt"

	"github.com/tieto/bleprofile/pkg/profile"
)

var (
	// ErrNoValue indicates the battery level characteristic has not been read or notified yet.
	ErrNoValue = profile.NewError("battery level has no value yet", false, true)
	// ErrMalformedValue indicates the peer reported a battery level outside 0-100%.
	ErrMalformedValue = profile.NewError("malformed battery level", false, false)
)

const (
	maxLevel               = 100
	presentationFormatSize = 7
)

// Reading is one battery level measurement. Namespace and Description come from the
// characteristic presentation format descriptor and are zero when the peer does not provide it.
type Reading struct {
	Level       uint8 // Percent, 0-100.
	Namespace   uint8
	Description uint16
}

func (r Reading) String() string {
	return fmt.Sprintf("%d%% (namespace %d, description 0x%04x)", r.Level, r.Namespace, r.Description)
}

// PresentationFormat is the decoded characteristic presentation format descriptor.
type PresentationFormat struct {
	Format      uint8
	Exponent    int8
	Unit        uint16
	Namespace   uint8
	Description uint16
}

// ParsePresentationFormat decodes a characteristic presentation format descriptor value. The
// value must be exactly 7 bytes long.
//
// All multi-byte fields are little-endian, so the description is b5 | b6<<8.
func ParsePresentationFormat(b []byte) (PresentationFormat, bool) {
	if len(b) != presentationFormatSize {
		return PresentationFormat{}, false
	}
	return PresentationFormat{
		Format:      b[0],
		Exponent:    int8(b[1]),
		Unit:        binary.LittleEndian.Uint16(b[2:4]),
		Namespace:   b[4],
		Description: binary.LittleEndian.Uint16(b[5:7]),
	}, true
}

// DecodeReading builds a Reading from the battery level characteristic value and, optionally,
// the presentation format descriptor value. Only the level is mandatory; a missing or malformed
// format leaves Namespace and Description at zero.
func DecodeReading(level []byte, format []byte) (Reading, error) {
	if len(level) == 0 {
		return Reading{}, ErrNoValue
	}
	if level[0] > maxLevel {
		return Reading{}, fmt.Errorf("%w: %d%%", ErrMalformedValue, level[0])
	}
	reading := Reading{Level: level[0]}
	if pf, ok := ParsePresentationFormat(format); ok {
		reading.Namespace = pf.Namespace
		reading.Description = pf.Description
	}
	return reading, nil
}
