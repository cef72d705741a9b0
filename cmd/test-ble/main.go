package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/connector/ble"
	"github.com/tieto/bleprofile/pkg/gatt"
)

var (
	btAdapter = flag.String("btAdapter", "", "Optional ID of Bluetooth adapter to use (Linux only)")
	backend   = flag.String("backend", "", "BLE stack to use (tinygo|goble)")
	device    = flag.String("device", "", "Also connect to the device with this address and list its services")
	timeout   = flag.Duration("timeout", 20*time.Second, "Timeout for connecting and discovering services")
)

func main() {
	flag.Parse()
	log.SetLevel(log.LevelDebug)

	b, err := ble.ParseBackend(*backend)
	if err != nil {
		log.Error("%s", err)
		os.Exit(1)
	}

	if *btAdapter != "" {
		log.Info("Trying to use BLE adapter: %s", *btAdapter)
	} else {
		log.Info("Using first available BLE device")
	}
	transport, err := ble.NewTransport(b, *btAdapter)
	if err != nil {
		if ble.IsAdapterError(b, err) {
			log.Error("%s", ble.AdapterErrorHelpMessage(b, err))
		} else {
			log.Error("Failed to initialize BLE device: %v", err)
		}
		os.Exit(1)
	}
	defer transport.Close()

	log.Info("BLE adapter initialized (%s)", b)

	if *device == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	go func() {
		<-signalChan
		cancel()
	}()

	discovered := make(chan gatt.Status, 1)
	handler := func(ev gatt.Event) {
		switch e := ev.(type) {
		case gatt.ConnectionStateChanged:
			log.Info("Connection %s (%s)", e.State, e.Status)
			if e.State == gatt.StateConnected {
				if err := e.Link().DiscoverServices(); err != nil {
					log.Error("Failed to start service discovery: %s", err)
				}
			}
		case gatt.ServicesDiscovered:
			discovered <- e.Status
		}
	}

	link, err := transport.Open(gatt.Device{Address: *device}, false, handler)
	if err != nil {
		log.Error("Failed to connect: %s", err)
		return
	}
	defer link.Close()

	select {
	case status := <-discovered:
		if !status.Success() {
			log.Error("Service discovery failed: %s", status)
			return
		}
	case <-ctx.Done():
		log.Error("Stopping: %s", ctx.Err())
		return
	}

	for _, s := range link.Services() {
		fmt.Printf("%s %s\n", s.UUID, gatt.Name(s.UUID))
		for _, c := range s.Characteristics {
			fmt.Printf("  %s %s [%s]\n", c.UUID, gatt.Name(c.UUID), c.Property)
			for _, d := range c.Descriptors {
				fmt.Printf("    %s %s\n", d.UUID, gatt.Name(d.UUID))
			}
		}
	}
}
