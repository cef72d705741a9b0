package goble

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

func IsAdapterError(err error) bool {
	return strings.Contains(err.Error(), "can't init hci") || strings.Contains(err.Error(), "operation not permitted")
}

func AdapterErrorHelpMessage(err error) string {
	return "Failed to initialize BLE adapter: \n\t" + err.Error() + "\n" +
		"The go-ble backend needs raw HCI access. Run as root or grant CAP_NET_ADMIN and CAP_NET_RAW,\n" +
		"and stop bluetoothd or bring the adapter down first (e.g. sudo hciconfig hci0 down)."
}

// newDevice accepts adapter IDs of the form "hci0" or "0".
func newDevice(id string) (ble.Device, error) {
	opts := []ble.Option{ble.OptListenerTimeout(bleTimeout), ble.OptDialerTimeout(bleTimeout)}
	if id != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(id, "hci"))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: '%s'", ErrAdapterInvalidID, id)
		}
		opts = append(opts, ble.OptDeviceID(n))
	}
	device, err := linux.NewDevice(opts...)
	if err != nil {
		return nil, err
	}
	return device, nil
}
