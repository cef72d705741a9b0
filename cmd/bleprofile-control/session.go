package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/cache"
	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/profile"
	"github.com/tieto/bleprofile/pkg/profile/battery"
	"github.com/tieto/bleprofile/pkg/profile/findme"
)

var pollInterval = 20 * time.Millisecond

// session drives both profiles against one device. Each profile holds its own link.
type session struct {
	device      gatt.Device
	autoConnect bool
	battery     *battery.Profile
	findMe      *findme.Profile
	devices     *cache.DeviceCache
	readings    chan battery.Reading

	outLock sync.Mutex
	out     io.Writer
}

func newSession(transport gatt.Transport, device gatt.Device, autoConnect bool, devices *cache.DeviceCache, out io.Writer) *session {
	s := &session{
		device:      device,
		autoConnect: autoConnect,
		devices:     devices,
		readings:    make(chan battery.Reading, 1),
		out:         out,
	}
	s.battery = battery.New(transport, batteryListener{s})
	s.findMe = findme.New(transport, profile.CallbackFunc(func(status gatt.Status, state gatt.ConnectionState) {
		s.printf("find me: %s (%s)\n", state, status)
	}))
	return s
}

func (s *session) printf(format string, a ...interface{}) {
	s.outLock.Lock()
	defer s.outLock.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

type batteryListener struct {
	s *session
}

func (l batteryListener) OnConnectionStateChanged(status gatt.Status, state gatt.ConnectionState) {
	l.s.printf("battery: %s (%s)\n", state, status)
}

func (l batteryListener) OnBatteryLevelChanged(level uint8, namespace uint8, description uint16) {
	r := battery.Reading{Level: level, Namespace: namespace, Description: description}
	l.s.printf("battery level: %s\n", r)
	l.s.devices.Modify(l.s.device.Address, func(record *cache.Record) {
		record.Battery = &r
		record.LastSeen = time.Now()
	})
	// Keep only the latest reading.
	select {
	case <-l.s.readings:
	default:
	}
	select {
	case l.s.readings <- r:
	default:
	}
}

// waitFor polls cond until it holds or ctx expires.
func waitFor(ctx context.Context, cond func() bool) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for !cond() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// open starts connecting both profiles.
func (s *session) open() error {
	if err := s.battery.Connect(s.device, s.autoConnect); err != nil {
		return fmt.Errorf("battery profile: %w", err)
	}
	if err := s.findMe.Connect(s.device, s.autoConnect); err != nil {
		return fmt.Errorf("find me profile: %w", err)
	}
	return nil
}

// waitReady blocks until both profiles have discovered the device's services, then asks for
// battery level notifications.
func (s *session) waitReady(ctx context.Context) error {
	err := waitFor(ctx, func() bool {
		return s.battery.Ready() && s.findMe.Ready()
	})
	if err != nil {
		return fmt.Errorf("device %s not ready: %w", s.device, err)
	}
	if err := s.battery.SetNotification(true); err != nil {
		log.Warning("Battery level notifications unavailable: %s", err)
	}
	s.devices.Modify(s.device.Address, func(r *cache.Record) {
		if s.device.Name != "" {
			r.Name = s.device.Name
		}
		r.LastSeen = time.Now()
	})
	return nil
}

func (s *session) connect(ctx context.Context) error {
	log.Info("Connecting to %s...", s.device)
	if err := s.open(); err != nil {
		return err
	}
	return s.waitReady(ctx)
}

func (s *session) disconnect() error {
	if err := s.battery.Disconnect(); err != nil {
		return err
	}
	return s.findMe.Disconnect()
}

// close releases both links. It returns false if neither profile held one.
func (s *session) close() bool {
	closedBattery := s.battery.Close()
	closedFindMe := s.findMe.Close()
	return closedBattery || closedFindMe
}

// drainReadings discards any buffered reading.
func (s *session) drainReadings() {
	select {
	case <-s.readings:
	default:
	}
}
