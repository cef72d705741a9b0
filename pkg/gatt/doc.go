// Package gatt defines the client-side view of a Bluetooth LE GATT server that profiles are
// written against.
//
// A [Transport] opens a [Link] to a remote [Device]. Every Link operation only initiates work;
// results arrive later as [Event] values delivered, in order, to the [Handler] given to
// [Transport.Open]. Discovered services, characteristics and descriptors form a tree of
// [Service], [Characteristic] and [Descriptor] values whose cached values are updated by the
// transport before the corresponding event is delivered.
//
// The package also holds the catalog of Bluetooth SIG UUIDs used by the battery and find me
// profiles.
package gatt
