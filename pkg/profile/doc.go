/*
Package profile contains the connection handling shared by single-device GATT profile clients.

A [Connection] owns at most one [gatt.Link]. It follows the link's connection state from transport
events, starts service discovery as soon as the link is up, drops events from links it no longer
holds and forwards everything else, in order, to the profile implementation (through [Hooks])
and to the application (through [Callback]).

The battery and find me profiles live in the battery and findme subpackages:

	bat := battery.New(transport, callback)
	if err := bat.Connect(device, false); err != nil {
		return err
	}
	// ... once callback.OnConnectionStateChanged reports gatt.StateConnected and discovery
	// has completed:
	err := bat.SetNotification(true)

# Errors

Profile operations return errors that implement [Error]. Use [IsInvalidArgument] to detect
caller contract violations (such as an out-of-range alert level) and [Temporary] to detect
conditions that may clear by themselves. Errors from the transport wrap [ErrTransport].
Nothing in this package retries automatically.
*/
package profile
