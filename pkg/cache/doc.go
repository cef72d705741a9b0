// Package cache remembers the BLE devices a client has talked to.
//
// A [DeviceCache] records, per device address, the device's name, when it was last connected
// and the last battery reading and alert level observed. Command-line clients use it to
// reconnect to the most recently used device when no address is given, and to show the last
// known state of a device before a new connection has been established.
//
// The cached values are a client-side view only. They are never written to a device, and a
// profile does not consult them: after connecting, the live values replace them.
package cache
