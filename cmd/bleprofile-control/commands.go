package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tieto/bleprofile/pkg/cache"
	"github.com/tieto/bleprofile/pkg/profile/battery"
	"github.com/tieto/bleprofile/pkg/profile/findme"
)

var (
	ErrCommandLineArgs = errors.New("invalid command line arguments")
	ErrUnknownCommand  = errors.New("unrecognized command")
	ErrNotConfirmed    = errors.New("device did not confirm the request")
)

type Argument struct {
	name string
	help string
}

type Handler func(ctx context.Context, s *session, args map[string]string) error

type Command struct {
	help     string
	offline  bool // True if the command does not need a connection to the device
	args     []Argument
	optional []Argument
	handler  Handler
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got '%s'", ErrCommandLineArgs, value)
}

func execute(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, ok := commands[args[0]]
	if !ok {
		return ErrUnknownCommand
	}

	var err error
	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args)-1, len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		err = info.handler(ctx, s, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

func findMe(ctx context.Context, s *session, args map[string]string) error {
	level, err := findme.ParseAlertLevel(args["LEVEL"])
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCommandLineArgs, err)
	}
	if err := s.findMe.FindMe(level); err != nil {
		return err
	}
	err = waitFor(ctx, func() bool {
		return s.findMe.AlertLevel() == level
	})
	if err != nil {
		return fmt.Errorf("%w: alert level %s: %s", ErrNotConfirmed, level, err)
	}
	s.devices.Modify(s.device.Address, func(r *cache.Record) {
		r.AlertLevel = level
	})
	s.printf("alert level: %s\n", level)
	return nil
}

func readBattery(ctx context.Context, s *session) error {
	s.drainReadings()
	cached, err := s.battery.ReadBatteryLevel()
	if err != nil && !errors.Is(err, battery.ErrNoValue) {
		return err
	}
	// The fresh value arrives through the battery listener once the read completes.
	select {
	case <-s.readings:
		return nil
	case <-ctx.Done():
	}
	if cached == nil {
		return fmt.Errorf("%w: battery level read: %s", ErrNotConfirmed, ctx.Err())
	}
	s.printf("battery level (cached): %s\n", cached)
	return nil
}

func setBatteryNotification(ctx context.Context, s *session, mode string) error {
	enable, err := parseSwitch(mode)
	if err != nil {
		return err
	}
	if err := s.battery.SetNotification(enable); err != nil {
		return err
	}
	err = waitFor(ctx, func() bool {
		return s.battery.Notifying() == enable
	})
	if err != nil {
		return fmt.Errorf("%w: notifications %s: %s", ErrNotConfirmed, mode, err)
	}
	s.printf("battery notifications: %v\n", enable)
	return nil
}

func printState(s *session) {
	s.printf("device:       %s\n", s.device)
	s.printf("battery:      %s (ready %v, notifying %v)\n", s.battery.State(), s.battery.Ready(), s.battery.Notifying())
	s.printf("find me:      %s (ready %v)\n", s.findMe.State(), s.findMe.Ready())
	s.printf("alert level:  %s\n", s.findMe.AlertLevel())
	if r, ok := s.devices.Get(s.device.Address); ok && r.Battery != nil {
		s.printf("last battery: %s\n", r.Battery)
	}
}

func printDevices(s *session) {
	records := s.devices.Records()
	if len(records) == 0 {
		s.printf("no known devices\n")
		return
	}
	for _, r := range records {
		line := fmt.Sprintf("%-17s %-16s last seen %s, alert %s", r.Address, r.Name, r.LastSeen.Format(time.RFC3339), r.AlertLevel)
		if r.Battery != nil {
			line += fmt.Sprintf(", battery %d%%", r.Battery.Level)
		}
		s.printf("%s\n", line)
	}
}

var commands = map[string]*Command{
	"findme": &Command{
		help: "Make the device alert",
		args: []Argument{
			Argument{name: "LEVEL", help: "Alert level: none, mid or high"},
		},
		handler: func(ctx context.Context, s *session, args map[string]string) error {
			return findMe(ctx, s, args)
		},
	},
	"battery": &Command{
		help: "Read the battery level, or turn battery level notifications on or off",
		args: []Argument{
			Argument{name: "ACTION", help: "read or notify"},
		},
		optional: []Argument{
			Argument{name: "MODE", help: "on or off (notify only)"},
		},
		handler: func(ctx context.Context, s *session, args map[string]string) error {
			mode, haveMode := args["MODE"]
			switch args["ACTION"] {
			case "read":
				if haveMode {
					return fmt.Errorf("%w: read takes no MODE", ErrCommandLineArgs)
				}
				return readBattery(ctx, s)
			case "notify":
				if !haveMode {
					return fmt.Errorf("%w: notify requires MODE", ErrCommandLineArgs)
				}
				return setBatteryNotification(ctx, s, mode)
			}
			return fmt.Errorf("%w: unknown ACTION '%s'", ErrCommandLineArgs, args["ACTION"])
		},
	},
	"state": &Command{
		help: "Show connection state and cached values",
		handler: func(ctx context.Context, s *session, args map[string]string) error {
			printState(s)
			return nil
		},
	},
	"devices": &Command{
		help:    "List known devices, most recently used first",
		offline: true,
		handler: func(ctx context.Context, s *session, args map[string]string) error {
			printDevices(s)
			return nil
		},
	},
	"connect": &Command{
		help: "Reconnect to the device",
		handler: func(ctx context.Context, s *session, args map[string]string) error {
			return s.connect(ctx)
		},
	},
	"disconnect": &Command{
		help: "Disconnect from the device, keeping the links for a later connect",
		handler: func(ctx context.Context, s *session, args map[string]string) error {
			return s.disconnect()
		},
	},
	"close": &Command{
		help: "Release the links to the device",
		handler: func(ctx context.Context, s *session, args map[string]string) error {
			if !s.close() {
				s.printf("nothing to close\n")
			}
			return nil
		},
	},
}
