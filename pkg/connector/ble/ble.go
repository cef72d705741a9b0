// Package ble selects the Bluetooth stack that backs a gatt.Transport.
package ble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tieto/bleprofile/pkg/connector/ble/goble"
	"github.com/tieto/bleprofile/pkg/connector/ble/tinygo"
	"github.com/tieto/bleprofile/pkg/gatt"
)

// Backend names a Bluetooth stack.
type Backend string

const (
	// BackendTinyGo uses tinygo.org/x/bluetooth: BlueZ on Linux, CoreBluetooth on macOS and WinRT
	// on Windows.
	BackendTinyGo Backend = "tinygo"
	// BackendGoBLE uses github.com/go-ble/ble, which drives the HCI socket directly on Linux.
	BackendGoBLE Backend = "goble"
)

// DefaultBackend works without elevated privileges on every supported OS.
const DefaultBackend = BackendTinyGo

var ErrUnknownBackend = errors.New("unknown BLE backend")

// ParseBackend accepts a backend name, case-insensitively. The empty string selects
// DefaultBackend.
func ParseBackend(name string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultBackend, nil
	case BackendTinyGo:
		return BackendTinyGo, nil
	case BackendGoBLE, "go-ble":
		return BackendGoBLE, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnknownBackend, name)
}

// NewTransport initializes adapterID, or the default adapter if adapterID is empty, using backend.
func NewTransport(backend Backend, adapterID string) (gatt.Transport, error) {
	switch backend {
	case BackendTinyGo:
		t, err := tinygo.NewTransport(adapterID)
		if err != nil {
			return nil, err
		}
		return t, nil
	case BackendGoBLE:
		t, err := goble.NewTransport(adapterID)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnknownBackend, backend)
}

// IsAdapterError reports whether err means the host's Bluetooth adapter could not be used at
// all, as opposed to a failure talking to a particular device.
func IsAdapterError(backend Backend, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, tinygo.ErrAdapterInvalidID) || errors.Is(err, goble.ErrAdapterInvalidID) {
		return true
	}
	switch backend {
	case BackendTinyGo:
		return tinygo.IsAdapterError(err)
	case BackendGoBLE:
		return goble.IsAdapterError(err)
	}
	return false
}

// AdapterErrorHelpMessage explains how to fix an error for which IsAdapterError is true.
func AdapterErrorHelpMessage(backend Backend, err error) string {
	if backend == BackendGoBLE {
		return goble.AdapterErrorHelpMessage(err)
	}
	return tinygo.AdapterErrorHelpMessage(err)
}
