package conn

import (
	"context"
	"errors"
	"fmt"

	"github.com/tieto/bleprofile/pkg/gatt"
)

// Peer is the blocking GATT client a BLE stack provides for one remote device.
//
// Dial, Disconnect and Disconnected are called from the link's connection goroutine. The other
// methods are called from its operation queue, one at a time, and only while connected. A Peer
// that implements io.Closer is closed once when its link is closed.
type Peer interface {
	// Dial connects to the device. It returns early with ctx.Err() if ctx is canceled.
	Dial(ctx context.Context) error
	// Disconnected returns a channel that is closed when the connection established by the last
	// successful Dial is lost.
	Disconnected() <-chan struct{}
	Disconnect() error

	// Discover returns the device's attribute tree. The returned attributes are owned by the
	// link and passed back to the other methods.
	Discover() ([]*gatt.Service, error)
	Read(c *gatt.Characteristic) ([]byte, error)
	Write(c *gatt.Characteristic, value []byte) error
	ReadDescriptor(d *gatt.Descriptor) ([]byte, error)
	WriteDescriptor(d *gatt.Descriptor, value []byte) error
	// Subscribe writes the client characteristic configuration of c and delivers subsequent
	// notifications (or indications) to handler.
	Subscribe(c *gatt.Characteristic, indicate bool, handler func([]byte)) error
	Unsubscribe(c *gatt.Characteristic) error
}

// StatusError is returned by peers when the remote device answered a request with an ATT
// error.
type StatusError gatt.Status

func (e StatusError) Error() string {
	return fmt.Sprintf("ble: remote device reported %s", gatt.Status(e))
}

// StatusOf maps the error of a peer operation to the status reported in its completion event.
func StatusOf(err error) gatt.Status {
	if err == nil {
		return gatt.StatusSuccess
	}
	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return gatt.Status(statusErr)
	}
	return gatt.StatusFailure
}
