package findme_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/gatt/gatttest"
	"github.com/tieto/bleprofile/pkg/profile"
	"github.com/tieto/bleprofile/pkg/profile/findme"
)

var device = gatt.Device{Address: "C0:FF:EE:00:00:02", Name: "Keys"}

var _ = Describe("Find Me profile", func() {
	var (
		transport *gatttest.FakeTransport
		p         *findme.Profile
		link      *gatttest.FakeLink
		alert     *gatt.Characteristic
	)

	connect := func() {
		Expect(p.Connect(device, false)).To(Succeed())
		link = transport.Last()
		link.EmitState(gatt.StateConnected, gatt.StatusSuccess)
		link.EmitServicesDiscovered(gatt.StatusSuccess)
		if s := link.Service(gatt.ImmediateAlertServiceUUID); s != nil {
			alert = s.Characteristic(gatt.AlertLevelUUID)
		}
	}

	// apply writes level and completes the write with status.
	apply := func(level findme.AlertLevel, status gatt.Status) {
		Expect(p.FindMe(level)).To(Succeed())
		link.EmitWrite(alert, status)
	}

	BeforeEach(func() {
		transport = gatttest.NewTransport(gatttest.ImmediateAlertService())
		p = findme.New(transport, nil)
		link, alert = nil, nil
	})

	It("starts without an alert", func() {
		Expect(p.AlertLevel()).To(Equal(findme.NoAlert))
	})

	DescribeTable("rejects out-of-range levels without writing",
		func(level int) {
			connect()
			err := p.FindMe(findme.AlertLevel(level))
			Expect(err).To(MatchError(findme.ErrInvalidAlertLevel))
			Expect(profile.IsInvalidArgument(err)).To(BeTrue())
			Expect(profile.Temporary(err)).To(BeFalse())
			Expect(link.Writes()).To(BeEmpty())
		},
		Entry("3", 3),
		Entry("4", 4),
		Entry("128", 128),
		Entry("255", 255),
	)

	DescribeTable("applies a level once the write completes",
		func(level findme.AlertLevel) {
			connect()
			Expect(p.FindMe(level)).To(Succeed())
			Expect(link.Writes()).To(Equal([]gatttest.Write{
				{Characteristic: alert, Value: []byte{uint8(level)}},
			}))
			link.EmitWrite(alert, gatt.StatusSuccess)
			Expect(p.AlertLevel()).To(Equal(level))
		},
		Entry("none", findme.NoAlert),
		Entry("mid", findme.Mid),
		Entry("high", findme.High),
	)

	It("does not report a level before the peer acknowledges it", func() {
		connect()
		Expect(p.FindMe(findme.High)).To(Succeed())
		Expect(p.AlertLevel()).To(Equal(findme.NoAlert))
	})

	It("keeps the previous level when the write fails", func() {
		connect()
		apply(findme.Mid, gatt.StatusSuccess)
		apply(findme.High, gatt.StatusWriteNotPermitted)
		Expect(p.AlertLevel()).To(Equal(findme.Mid))
	})

	It("keeps the previous level when the transport rejects the write", func() {
		connect()
		apply(findme.Mid, gatt.StatusSuccess)
		link.WriteErr = gatttest.ErrInjected
		err := p.FindMe(findme.High)
		Expect(errors.Is(err, profile.ErrTransport)).To(BeTrue())
		Expect(profile.IsInvalidArgument(err)).To(BeFalse())

		link.WriteErr = nil
		apply(findme.NoAlert, gatt.StatusSuccess)
		Expect(p.AlertLevel()).To(Equal(findme.NoAlert))
	})

	It("matches completions to writes in order", func() {
		connect()
		Expect(p.FindMe(findme.High)).To(Succeed())
		Expect(p.FindMe(findme.Mid)).To(Succeed())
		link.EmitWrite(alert, gatt.StatusSuccess)
		Expect(p.AlertLevel()).To(Equal(findme.High))
		link.EmitWrite(alert, gatt.StatusFailure)
		Expect(p.AlertLevel()).To(Equal(findme.High))
	})

	It("ignores completions for other characteristics", func() {
		connect()
		Expect(p.FindMe(findme.High)).To(Succeed())
		link.EmitWrite(gatt.NewCharacteristic(gatt.BatteryLevelUUID, gatt.PropRead), gatt.StatusSuccess)
		Expect(p.AlertLevel()).To(Equal(findme.NoAlert))
	})

	DescribeTable("resets to no alert",
		func(reset func()) {
			connect()
			apply(findme.High, gatt.StatusSuccess)
			Expect(p.AlertLevel()).To(Equal(findme.High))
			reset()
			Expect(p.AlertLevel()).To(Equal(findme.NoAlert))
		},
		Entry("when the link drops", func() {
			link.EmitState(gatt.StateDisconnected, gatt.StatusConnectionTerminated)
		}),
		Entry("on Disconnect", func() {
			Expect(p.Disconnect()).To(Succeed())
		}),
		Entry("on Close", func() {
			Expect(p.Close()).To(BeTrue())
		}),
	)

	It("ignores completions that arrive after a disconnection", func() {
		connect()
		Expect(p.FindMe(findme.High)).To(Succeed())
		link.EmitState(gatt.StateDisconnected, gatt.StatusConnectionTerminated)
		link.EmitWrite(alert, gatt.StatusSuccess)
		Expect(p.AlertLevel()).To(Equal(findme.NoAlert))
	})

	It("ignores completions from a closed link", func() {
		connect()
		Expect(p.FindMe(findme.High)).To(Succeed())
		Expect(p.Close()).To(BeTrue())
		link.EmitWrite(alert, gatt.StatusSuccess)
		Expect(p.AlertLevel()).To(Equal(findme.NoAlert))
	})

	It("requires the immediate alert service", func() {
		transport.Services = []*gatt.Service{gatttest.BatteryService(true, true)}
		connect()
		Expect(p.FindMe(findme.High)).To(MatchError(profile.ErrServiceNotFound))
	})

	It("requires the alert level characteristic", func() {
		transport.Services = []*gatt.Service{gatt.NewService(gatt.ImmediateAlertServiceUUID)}
		connect()
		Expect(p.FindMe(findme.High)).To(MatchError(profile.ErrCharacteristicNotFound))
	})

	It("requires a connection", func() {
		Expect(p.FindMe(findme.High)).To(MatchError(profile.ErrNotConnected))
	})

	It("leaves device enumeration to the transport", func() {
		_, err := p.ConnectedDevices()
		Expect(err).To(MatchError(profile.ErrUnsupported))
		_, err = p.DevicesMatchingConnectionStates(gatt.StateConnected)
		Expect(err).To(MatchError(profile.ErrUnsupported))
		_, err = p.ConnectionState(device)
		Expect(err).To(MatchError(profile.ErrUnsupported))
	})
})
