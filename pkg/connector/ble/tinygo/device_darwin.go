package tinygo

import (
	"fmt"

	"tinygo.org/x/bluetooth"
)

func IsAdapterError(_ error) bool {
	return false
}

func AdapterErrorHelpMessage(err error) string {
	return err.Error()
}

func newAdapter(id string) (*bluetooth.Adapter, error) {
	if id != "" {
		return nil, ErrAdapterInvalidID
	}
	return bluetooth.DefaultAdapter, nil
}

var deviceCharacteristicWrite = bluetooth.DeviceCharacteristic.Write

// parseAddress accepts the CoreBluetooth peripheral UUID, which macOS uses instead of the MAC.
func parseAddress(address string) (bluetooth.Address, error) {
	id, err := bluetooth.ParseUUID(address)
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("ble: failed to parse peripheral UUID: %s", err)
	}
	return bluetooth.Address{UUID: id}, nil
}
