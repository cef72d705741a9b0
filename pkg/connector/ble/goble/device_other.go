//go:build !linux && !darwin

package goble

import (
	"errors"

	"github.com/go-ble/ble"
)

func IsAdapterError(_ error) bool {
	return false
}

func AdapterErrorHelpMessage(err error) string {
	return err.Error()
}

func newDevice(_ string) (ble.Device, error) {
	return nil, errors.New("the go-ble backend is not supported on this platform")
}
