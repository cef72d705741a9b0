package conn_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tieto/bleprofile/pkg/connector/ble/conn"
	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/gatt/gatttest"
)

var errBusy = errors.New("adapter busy")

// fakePeer is a Peer whose remote device holds a battery service.
type fakePeer struct {
	lock         sync.Mutex
	dialErrs     []error
	dials        int
	disconnects  int
	closes       int
	disconnected chan struct{}
	services     []*gatt.Service
	values       map[any][]byte
	readErr      error
	writes       [][]byte
	subscribed   map[*gatt.Characteristic]func([]byte)
	indicate     bool
	block        chan struct{}
}

func newFakePeer() *fakePeer {
	return &fakePeer{
		services:   []*gatt.Service{gatttest.BatteryService(true, true), gatttest.ImmediateAlertService()},
		values:     make(map[any][]byte),
		subscribed: make(map[*gatt.Characteristic]func([]byte)),
	}
}

func (p *fakePeer) Dial(ctx context.Context) error {
	p.lock.Lock()
	p.dials++
	block := p.block
	var err error
	if len(p.dialErrs) > 0 {
		err = p.dialErrs[0]
		p.dialErrs = p.dialErrs[1:]
	}
	if err == nil {
		p.disconnected = make(chan struct{})
	}
	p.lock.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (p *fakePeer) Disconnected() <-chan struct{} {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.disconnected
}

// drop simulates link loss.
func (p *fakePeer) drop() {
	p.lock.Lock()
	defer p.lock.Unlock()
	close(p.disconnected)
}

func (p *fakePeer) Disconnect() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.disconnects++
	return nil
}

func (p *fakePeer) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.closes++
	return nil
}

func (p *fakePeer) closeCount() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.closes
}

func (p *fakePeer) Discover() ([]*gatt.Service, error) {
	return p.services, nil
}

func (p *fakePeer) Read(c *gatt.Characteristic) ([]byte, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.readErr != nil {
		return nil, p.readErr
	}
	return p.values[c], nil
}

func (p *fakePeer) Write(c *gatt.Characteristic, value []byte) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.writes = append(p.writes, value)
	return nil
}

func (p *fakePeer) ReadDescriptor(d *gatt.Descriptor) ([]byte, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.values[d], nil
}

func (p *fakePeer) WriteDescriptor(d *gatt.Descriptor, value []byte) error {
	return conn.StatusError(gatt.StatusWriteNotPermitted)
}

func (p *fakePeer) Subscribe(c *gatt.Characteristic, indicate bool, handler func([]byte)) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.subscribed[c] = handler
	p.indicate = indicate
	return nil
}

func (p *fakePeer) Unsubscribe(c *gatt.Characteristic) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	delete(p.subscribed, c)
	return nil
}

func (p *fakePeer) notify(c *gatt.Characteristic, value []byte) {
	p.lock.Lock()
	handler := p.subscribed[c]
	p.lock.Unlock()
	if handler != nil {
		handler(value)
	}
}

func (p *fakePeer) dialCount() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.dials
}

func (p *fakePeer) disconnectCount() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.disconnects
}

// recorder collects the events delivered by a link.
type recorder struct {
	lock   sync.Mutex
	events []gatt.Event
}

func (r *recorder) handle(ev gatt.Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []gatt.Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]gatt.Event(nil), r.events...)
}

func (r *recorder) states() []gatt.ConnectionState {
	var states []gatt.ConnectionState
	for _, ev := range r.all() {
		if e, ok := ev.(gatt.ConnectionStateChanged); ok {
			states = append(states, e.State)
		}
	}
	return states
}

func (r *recorder) last() gatt.Event {
	events := r.all()
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

var _ = Describe("Link", func() {
	var (
		device = gatt.Device{Address: "C0:FF:EE:00:00:03"}
		peer   *fakePeer
		events *recorder
		link   *conn.Link
	)

	open := func(autoConnect bool) {
		link = conn.New(device, peer, autoConnect, events.handle)
		DeferCleanup(func() {
			_ = link.Close()
		})
		Expect(link.Connect()).To(Succeed())
	}

	// ready connects and discovers services.
	ready := func() {
		open(false)
		Eventually(link.State).Should(Equal(gatt.StateConnected))
		Expect(link.DiscoverServices()).To(Succeed())
		Eventually(events.last).Should(BeAssignableToTypeOf(gatt.ServicesDiscovered{}))
	}

	batteryLevel := func() *gatt.Characteristic {
		return link.Service(gatt.BatteryServiceUUID).Characteristic(gatt.BatteryLevelUUID)
	}

	BeforeEach(func() {
		peer = newFakePeer()
		events = &recorder{}
	})

	It("reports connection progress", func() {
		open(false)
		Eventually(events.states).Should(Equal([]gatt.ConnectionState{gatt.StateConnecting, gatt.StateConnected}))
		Expect(events.all()[0].Link()).To(BeIdenticalTo(link))
	})

	It("reports a failed attempt without auto-connect", func() {
		peer.dialErrs = []error{errBusy}
		open(false)
		Eventually(events.states).Should(Equal([]gatt.ConnectionState{gatt.StateConnecting, gatt.StateDisconnected}))
		Expect(events.last().(gatt.ConnectionStateChanged).Status).To(Equal(gatt.StatusFailure))
		Expect(peer.dialCount()).To(Equal(1))
	})

	It("keeps trying with auto-connect", func() {
		peer.dialErrs = []error{errBusy, errBusy}
		open(true)
		Eventually(link.State).Should(Equal(gatt.StateConnected))
		Expect(peer.dialCount()).To(Equal(3))
		Expect(events.states()).To(Equal([]gatt.ConnectionState{gatt.StateConnecting, gatt.StateConnected}))
	})

	It("reconnects after link loss with auto-connect", func() {
		open(true)
		Eventually(link.State).Should(Equal(gatt.StateConnected))
		peer.drop()
		Eventually(events.states).Should(Equal([]gatt.ConnectionState{
			gatt.StateConnecting, gatt.StateConnected,
			gatt.StateDisconnected, gatt.StateConnecting, gatt.StateConnected,
		}))
		Expect(peer.dialCount()).To(Equal(2))
	})

	It("reports link loss without auto-connect", func() {
		ready()
		peer.drop()
		Eventually(link.State).Should(Equal(gatt.StateDisconnected))
		Expect(events.last().(gatt.ConnectionStateChanged).Status).To(Equal(gatt.StatusConnectionTerminated))
		Expect(link.Services()).To(BeEmpty())
		Expect(link.ReadCharacteristic(gatt.NewCharacteristic(gatt.BatteryLevelUUID, gatt.PropRead))).To(MatchError(gatt.ErrNotConnected))
	})

	It("disconnects and reconnects on request", func() {
		open(false)
		Eventually(link.State).Should(Equal(gatt.StateConnected))
		Expect(link.Disconnect()).To(Succeed())
		Eventually(link.State).Should(Equal(gatt.StateDisconnected))
		Expect(peer.disconnectCount()).To(Equal(1))
		Expect(link.Disconnect()).To(Succeed())

		Expect(link.Connect()).To(Succeed())
		Eventually(link.State).Should(Equal(gatt.StateConnected))
		Expect(events.states()).To(Equal([]gatt.ConnectionState{
			gatt.StateConnecting, gatt.StateConnected,
			gatt.StateDisconnecting, gatt.StateDisconnected,
			gatt.StateConnecting, gatt.StateConnected,
		}))
	})

	It("abandons a pending attempt on Disconnect", func() {
		peer.block = make(chan struct{})
		open(true)
		Eventually(peer.dialCount).Should(Equal(1))
		Expect(link.Disconnect()).To(Succeed())
		Eventually(link.State).Should(Equal(gatt.StateDisconnected))
		Expect(peer.disconnectCount()).To(Equal(0))
	})

	It("ignores Connect while connected", func() {
		open(false)
		Eventually(link.State).Should(Equal(gatt.StateConnected))
		Expect(link.Connect()).To(Succeed())
		Consistently(peer.dialCount).Should(Equal(1))
	})

	It("rejects everything after Close", func() {
		ready()
		c := batteryLevel()
		Expect(link.Close()).To(Succeed())
		Expect(link.Close()).To(Succeed())
		Expect(link.Connect()).To(MatchError(gatt.ErrLinkClosed))
		Expect(link.Disconnect()).To(MatchError(gatt.ErrLinkClosed))
		Expect(link.ReadCharacteristic(c)).To(MatchError(gatt.ErrLinkClosed))
		Eventually(peer.disconnectCount).Should(Equal(1))
		Expect(peer.closeCount()).To(Equal(1))
	})

	It("only discovers services while connected", func() {
		peer.dialErrs = []error{errBusy}
		open(false)
		Eventually(link.State).Should(Equal(gatt.StateDisconnected))
		Expect(link.DiscoverServices()).To(MatchError(gatt.ErrNotConnected))
	})

	It("exposes discovered services", func() {
		ready()
		Expect(link.Services()).To(HaveLen(2))
		Expect(link.Service(gatt.ImmediateAlertServiceUUID)).ToNot(BeNil())
	})

	It("completes reads with the peer's value", func() {
		ready()
		c := batteryLevel()
		peer.values[c] = []byte{0x32}
		Expect(link.ReadCharacteristic(c)).To(Succeed())
		Eventually(events.last).Should(Equal(gatt.CharacteristicRead{
			Header: gatt.Header{Source: link}, Characteristic: c, Value: []byte{0x32}, Status: gatt.StatusSuccess,
		}))
		Expect(c.Value()).To(Equal([]byte{0x32}))
	})

	It("reports failed reads", func() {
		ready()
		c := batteryLevel()
		peer.readErr = conn.StatusError(gatt.StatusReadNotPermitted)
		Expect(link.ReadCharacteristic(c)).To(Succeed())
		Eventually(events.last).Should(BeAssignableToTypeOf(gatt.CharacteristicRead{}))
		Expect(events.last().(gatt.CharacteristicRead).Status).To(Equal(gatt.StatusReadNotPermitted))
	})

	It("rejects attributes it did not discover", func() {
		ready()
		stranger := gatt.NewCharacteristic(gatt.BatteryLevelUUID, gatt.PropRead)
		Expect(link.ReadCharacteristic(stranger)).To(MatchError(gatt.ErrUnknownAttribute))
		Expect(link.WriteDescriptor(gatt.NewDescriptor(gatt.ClientConfigurationUUID), gatt.EnableNotificationValue)).To(MatchError(gatt.ErrUnknownAttribute))
	})

	It("completes writes in order", func() {
		ready()
		c := link.Service(gatt.ImmediateAlertServiceUUID).Characteristic(gatt.AlertLevelUUID)
		Expect(link.WriteCharacteristic(c, []byte{2})).To(Succeed())
		Expect(link.WriteCharacteristic(c, []byte{0})).To(Succeed())
		Eventually(func() int { return len(events.all()) }).Should(Equal(5))
		Expect(peer.writes).To(Equal([][]byte{{2}, {0}}))
		Expect(c.Value()).To(Equal([]byte{0}))
	})

	It("reports the status of descriptor writes", func() {
		ready()
		d := batteryLevel().Descriptor(gatt.PresentationFormatUUID)
		Expect(link.WriteDescriptor(d, []byte{1})).To(Succeed())
		Eventually(events.last).Should(BeAssignableToTypeOf(gatt.DescriptorWrite{}))
		Expect(events.last().(gatt.DescriptorWrite).Status).To(Equal(gatt.StatusWriteNotPermitted))
	})

	It("reads descriptors", func() {
		ready()
		d := batteryLevel().Descriptor(gatt.PresentationFormatUUID)
		peer.values[d] = []byte{4, 0, 0xad, 0x27, 1, 2, 3}
		Expect(link.ReadDescriptor(d)).To(Succeed())
		Eventually(events.last).Should(BeAssignableToTypeOf(gatt.DescriptorRead{}))
		Expect(d.Value()).To(Equal([]byte{4, 0, 0xad, 0x27, 1, 2, 3}))
	})

	Describe("notifications", func() {
		var c *gatt.Characteristic
		var cccd *gatt.Descriptor

		BeforeEach(func() {
			ready()
			c = batteryLevel()
			cccd = c.Descriptor(gatt.ClientConfigurationUUID)
		})

		It("subscribes through the configuration descriptor", func() {
			Expect(link.SetCharacteristicNotification(c, true)).To(Succeed())
			Expect(link.WriteDescriptor(cccd, gatt.EnableNotificationValue)).To(Succeed())
			Eventually(events.last).Should(Equal(gatt.DescriptorWrite{
				Header: gatt.Header{Source: link}, Descriptor: cccd, Value: gatt.EnableNotificationValue, Status: gatt.StatusSuccess,
			}))
			Expect(peer.indicate).To(BeFalse())

			peer.notify(c, []byte{0x14})
			Eventually(events.last).Should(Equal(gatt.CharacteristicChanged{
				Header: gatt.Header{Source: link}, Characteristic: c, Value: []byte{0x14},
			}))
			Expect(c.Value()).To(Equal([]byte{0x14}))
		})

		It("subscribes to indications", func() {
			Expect(link.WriteDescriptor(cccd, gatt.EnableIndicationValue)).To(Succeed())
			Eventually(events.last).Should(BeAssignableToTypeOf(gatt.DescriptorWrite{}))
			Expect(peer.indicate).To(BeTrue())
		})

		It("drops notifications that were not registered", func() {
			Expect(link.WriteDescriptor(cccd, gatt.EnableNotificationValue)).To(Succeed())
			Eventually(events.last).Should(BeAssignableToTypeOf(gatt.DescriptorWrite{}))
			count := len(events.all())
			peer.notify(c, []byte{0x14})
			Consistently(func() int { return len(events.all()) }).Should(Equal(count))
		})

		It("unsubscribes", func() {
			Expect(link.SetCharacteristicNotification(c, true)).To(Succeed())
			Expect(link.WriteDescriptor(cccd, gatt.EnableNotificationValue)).To(Succeed())
			Expect(link.WriteDescriptor(cccd, gatt.DisableNotificationValue)).To(Succeed())
			Eventually(func() gatt.Event { return events.last() }).Should(WithTransform(func(ev gatt.Event) []byte {
				if e, ok := ev.(gatt.DescriptorWrite); ok {
					return e.Value
				}
				return nil
			}, Equal(gatt.DisableNotificationValue)))
			Expect(peer.subscribed).To(BeEmpty())
		})
	})
})

var _ = Describe("StatusOf", func() {
	It("maps peer errors to statuses", func() {
		Expect(conn.StatusOf(nil)).To(Equal(gatt.StatusSuccess))
		Expect(conn.StatusOf(errBusy)).To(Equal(gatt.StatusFailure))
		wrapped := errors.Join(errBusy, conn.StatusError(gatt.StatusInsufficientAuth))
		Expect(conn.StatusOf(wrapped)).To(Equal(gatt.StatusInsufficientAuth))
	})
})
