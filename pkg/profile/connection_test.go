package profile_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/mocks"
	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/gatt/gatttest"
	"github.com/tieto/bleprofile/pkg/profile"
)

var (
	device = gatt.Device{Address: "AA:BB:CC:DD:EE:FF", Name: "Keyfob"}
	other  = gatt.Device{Address: "11:22:33:44:55:66"}
)

// recordingHooks logs the order in which the connection drives its hooks.
type recordingHooks struct {
	calls []string
}

func (h *recordingHooks) HandleEvent(ev gatt.Event) {
	switch e := ev.(type) {
	case gatt.ConnectionStateChanged:
		h.calls = append(h.calls, "event:"+e.State.String())
	case gatt.ServicesDiscovered:
		h.calls = append(h.calls, "event:discovered")
	default:
		h.calls = append(h.calls, "event:other")
	}
}

func (h *recordingHooks) Reset() {
	h.calls = append(h.calls, "reset")
}

var _ = Describe("Connection", func() {
	const tag = log.Tag("test")

	Context("with a mocked transport", func() {
		var (
			ctrl      *gomock.Controller
			transport *mocks.GattTransport
			link      *mocks.GattLink
			callback  *mocks.ProfileCallback
			conn      *profile.Connection
			handler   gatt.Handler
		)

		BeforeEach(func() {
			ctrl = gomock.NewController(GinkgoT())
			transport = mocks.NewGattTransport(ctrl)
			link = mocks.NewGattLink(ctrl)
			callback = mocks.NewProfileCallback(ctrl)
			conn = profile.NewConnection(tag, transport, callback, nil)
			link.EXPECT().Device().Return(device).AnyTimes()
			DeferCleanup(func() {
				ctrl.Finish()
			})
		})

		expectOpen := func(autoConnect bool) {
			transport.EXPECT().Open(device, autoConnect, gomock.Any()).DoAndReturn(
				func(_ gatt.Device, _ bool, h gatt.Handler) (gatt.Link, error) {
					handler = h
					return link, nil
				})
		}

		It("passes autoConnect to the transport", func() {
			expectOpen(true)
			Expect(conn.Connect(device, true)).To(Succeed())
			Expect(conn.Link()).To(Equal(link))
			Expect(conn.Device()).To(Equal(device))
			Expect(conn.State()).To(Equal(gatt.StateDisconnected))
		})

		It("reuses the link when connecting to the same device again", func() {
			expectOpen(false)
			link.EXPECT().Connect().Return(nil)
			Expect(conn.Connect(device, false)).To(Succeed())
			Expect(conn.Connect(gatt.Device{Address: "aa:bb:cc:dd:ee:ff"}, false)).To(Succeed())
		})

		It("reports a rejected reconnect as a transport error", func() {
			expectOpen(false)
			link.EXPECT().Connect().Return(gatt.ErrLinkClosed)
			Expect(conn.Connect(device, false)).To(Succeed())
			err := conn.Connect(device, false)
			Expect(errors.Is(err, profile.ErrTransport)).To(BeTrue())
			Expect(errors.Is(err, gatt.ErrLinkClosed)).To(BeTrue())
		})

		It("starts discovery and notifies the callback once connected", func() {
			expectOpen(false)
			gomock.InOrder(
				link.EXPECT().DiscoverServices().Return(nil),
				callback.EXPECT().OnConnectionStateChanged(gatt.StatusSuccess, gatt.StateConnected),
			)
			Expect(conn.Connect(device, false)).To(Succeed())
			handler(gatt.ConnectionStateChanged{Header: gatt.Header{Source: link}, State: gatt.StateConnected})
			Expect(conn.State()).To(Equal(gatt.StateConnected))
			Expect(conn.Ready()).To(BeFalse())
		})

		It("notifies the callback even if discovery cannot start", func() {
			expectOpen(false)
			link.EXPECT().DiscoverServices().Return(gatt.ErrNotConnected)
			callback.EXPECT().OnConnectionStateChanged(gatt.StatusSuccess, gatt.StateConnected)
			Expect(conn.Connect(device, false)).To(Succeed())
			handler(gatt.ConnectionStateChanged{Header: gatt.Header{Source: link}, State: gatt.StateConnected})
		})

		It("wraps open failures", func() {
			transport.EXPECT().Open(device, false, gomock.Any()).Return(nil, gatttest.ErrInjected)
			err := conn.Connect(device, false)
			Expect(errors.Is(err, profile.ErrTransport)).To(BeTrue())
			Expect(errors.Is(err, gatttest.ErrInjected)).To(BeTrue())
			Expect(profile.Temporary(err)).To(BeTrue())
			Expect(conn.Link()).To(BeNil())
		})

		It("rejects an empty device without touching the transport", func() {
			Expect(conn.Connect(gatt.Device{}, false)).To(MatchError(profile.ErrNoDevice))
		})
	})

	Context("with a fake transport", func() {
		var (
			transport *gatttest.FakeTransport
			hooks     *recordingHooks
			states    []gatt.ConnectionState
			conn      *profile.Connection
		)

		BeforeEach(func() {
			transport = gatttest.NewTransport(gatttest.BatteryService(true, true))
			hooks = &recordingHooks{}
			states = nil
			conn = profile.NewConnection(tag, transport, profile.CallbackFunc(func(_ gatt.Status, state gatt.ConnectionState) {
				states = append(states, state)
			}), hooks)
		})

		It("follows the connection state reported by the transport", func() {
			Expect(conn.Connect(device, false)).To(Succeed())
			link := transport.Last()
			link.EmitState(gatt.StateConnecting, gatt.StatusSuccess)
			Expect(conn.State()).To(Equal(gatt.StateConnecting))
			link.EmitState(gatt.StateConnected, gatt.StatusSuccess)
			Expect(link.Discoveries()).To(Equal(1))
			link.EmitServicesDiscovered(gatt.StatusSuccess)
			Expect(conn.Ready()).To(BeTrue())
			link.EmitState(gatt.StateDisconnected, gatt.StatusConnectionTerminated)
			Expect(conn.State()).To(Equal(gatt.StateDisconnected))
			Expect(conn.Ready()).To(BeFalse())
			Expect(states).To(Equal([]gatt.ConnectionState{
				gatt.StateConnecting, gatt.StateConnected, gatt.StateDisconnected,
			}))
		})

		It("resets the profile before it sees a disconnection", func() {
			Expect(conn.Connect(device, false)).To(Succeed())
			link := transport.Last()
			link.EmitState(gatt.StateConnected, gatt.StatusSuccess)
			link.EmitServicesDiscovered(gatt.StatusSuccess)
			link.EmitState(gatt.StateDisconnected, gatt.StatusSuccess)
			Expect(hooks.calls).To(Equal([]string{
				"event:connected", "event:discovered", "reset", "event:disconnected",
			}))
		})

		It("does not report failed discovery as ready", func() {
			Expect(conn.Connect(device, false)).To(Succeed())
			link := transport.Last()
			link.EmitState(gatt.StateConnected, gatt.StatusSuccess)
			link.EmitServicesDiscovered(gatt.StatusFailure)
			Expect(conn.Ready()).To(BeFalse())
		})

		It("closes the old link when connecting to another device", func() {
			Expect(conn.Connect(device, false)).To(Succeed())
			first := transport.Last()
			Expect(conn.Connect(other, false)).To(Succeed())
			Expect(transport.Links()).To(HaveLen(2))
			Expect(first.Closed()).To(BeTrue())
			Expect(conn.Device()).To(Equal(other))
			Expect(hooks.calls).To(Equal([]string{"reset"}))
		})

		It("drops events from links it no longer holds", func() {
			Expect(conn.Connect(device, false)).To(Succeed())
			first := transport.Last()
			Expect(conn.Connect(other, false)).To(Succeed())
			first.EmitState(gatt.StateConnected, gatt.StatusSuccess)
			Expect(states).To(BeEmpty())
			Expect(conn.State()).To(Equal(gatt.StateDisconnected))
			Expect(first.Discoveries()).To(Equal(0))
		})

		It("drops events after Close", func() {
			Expect(conn.Connect(device, false)).To(Succeed())
			link := transport.Last()
			Expect(conn.Close()).To(BeTrue())
			link.EmitState(gatt.StateConnected, gatt.StatusSuccess)
			Expect(states).To(BeEmpty())
			Expect(conn.Link()).To(BeNil())
			Expect(link.Closed()).To(BeTrue())
		})

		It("reports whether Close released anything", func() {
			Expect(conn.Close()).To(BeFalse())
			Expect(conn.Connect(device, false)).To(Succeed())
			Expect(conn.Close()).To(BeTrue())
			Expect(conn.Close()).To(BeFalse())
		})

		It("can be reused after Close", func() {
			Expect(conn.Connect(device, false)).To(Succeed())
			Expect(conn.Close()).To(BeTrue())
			Expect(conn.Connect(device, false)).To(Succeed())
			Expect(transport.Links()).To(HaveLen(2))
			Expect(conn.Link()).To(Equal(transport.Last()))
		})

		It("keeps the link on Disconnect", func() {
			Expect(conn.Disconnect()).To(Succeed())
			Expect(conn.Connect(device, false)).To(Succeed())
			link := transport.Last()
			Expect(conn.Disconnect()).To(Succeed())
			Expect(link.Disconnects()).To(Equal(1))
			Expect(conn.Link()).To(Equal(link))
			Expect(hooks.calls).To(Equal([]string{"reset"}))

			link.DisconnectErr = gatttest.ErrInjected
			Expect(errors.Is(conn.Disconnect(), profile.ErrTransport)).To(BeTrue())
		})

		Describe("Characteristic", func() {
			It("requires a link", func() {
				_, _, err := conn.Characteristic(gatt.BatteryLevel)
				Expect(err).To(MatchError(profile.ErrNotConnected))
			})

			It("resolves discovered characteristics", func() {
				Expect(conn.Connect(device, false)).To(Succeed())
				link, c, err := conn.Characteristic(gatt.BatteryLevel)
				Expect(err).ToNot(HaveOccurred())
				Expect(link).To(Equal(transport.Last()))
				Expect(c.UUID).To(Equal(gatt.BatteryLevelUUID))
			})

			It("distinguishes a missing service from a missing characteristic", func() {
				Expect(conn.Connect(device, false)).To(Succeed())
				_, _, err := conn.Characteristic(gatt.AlertLevel)
				Expect(err).To(MatchError(profile.ErrServiceNotFound))
				Expect(profile.Temporary(err)).To(BeTrue())

				transport.Services = []*gatt.Service{gatt.NewService(gatt.ImmediateAlertServiceUUID)}
				Expect(conn.Connect(other, false)).To(Succeed())
				_, _, err = conn.Characteristic(gatt.AlertLevel)
				Expect(err).To(MatchError(profile.ErrCharacteristicNotFound))
			})
		})
	})
})
