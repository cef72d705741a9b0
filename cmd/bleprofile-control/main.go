package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"
	"golang.org/x/term"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/cli"
	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/profile"
)

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n")
}

const usage = `
 * Commands are sent to the device given by -device, or to the most recently used device.
 * Without a COMMAND, an interactive shell is started. Type "exit" to leave it.`

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	fmt.Printf("\nRun %s help COMMAND for more information. Valid COMMANDs are listed below.", os.Args[0])
	fmt.Println("")
	fmt.Println(usage)
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available COMMANDs:\n")
	maxLength := 0
	var labels []string
	for command := range commands {
		labels = append(labels, command)
		if len(command) > maxLength {
			maxLength = len(command)
		}
	}
	sort.Strings(labels)
	for _, command := range labels {
		info := commands[command]
		fmt.Printf("  %s%s %s\n", command, strings.Repeat(" ", maxLength-len(command)), info.help)
	}
}

func runCommand(s *session, args []string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := execute(ctx, s, args); err != nil {
		if errors.Is(err, ErrNotConfirmed) {
			writeErr("Couldn't verify success: %s", err)
		} else if profile.Temporary(err) {
			writeErr("Failed to execute command, try again: %s", err)
		} else {
			writeErr("Failed to execute command: %s", err)
		}
		return 1
	}
	return 0
}

func runInteractiveShell(s *session, in io.Reader, prompt bool, timeout time.Duration) int {
	showPrompt := func() {
		if prompt {
			fmt.Printf("> ")
		}
	}
	scanner := bufio.NewScanner(in)
	for showPrompt(); scanner.Scan(); showPrompt() {
		args, err := shlex.Split(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		if err != nil {
			writeErr("Invalid command: %s", err)
			continue
		}
		runCommand(s, args, timeout)
	}
	if err := scanner.Err(); err != nil {
		writeErr("Error reading command: %s", err)
		return 1
	}
	return 0
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	var (
		commandTimeout time.Duration
		connTimeout    time.Duration
	)
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %s\n", err)
		return
	}
	flag.Usage = Usage
	flag.DurationVar(&commandTimeout, "command-timeout", 5*time.Second, "Set timeout for commands sent to the device.")
	flag.DurationVar(&connTimeout, "connect-timeout", 20*time.Second, "Set timeout for establishing initial connection.")

	config.RegisterCommandLineFlags()
	flag.Parse()
	config.ReadFromEnvironment()
	if err := config.ReadFromFile(); err != nil {
		writeErr("Error: %s", err)
		return
	}
	log.SetLevel(config.LogLevel())

	args := flag.Args()
	offline := false
	if len(args) > 0 {
		if args[0] == "help" {
			if len(args) == 1 {
				Usage()
				status = 0
				return
			}
			info, ok := commands[args[1]]
			if !ok {
				writeErr("Unrecognized command: %s", args[1])
				return
			}
			info.Usage(args[1])
			status = 0
			return
		}
		info, ok := commands[args[0]]
		if !ok {
			writeErr("Unrecognized command: %s", args[0])
			return
		}
		offline = info.offline
	}

	devices, err := config.Devices()
	if err != nil {
		writeErr("Error: %s", err)
		return
	}
	defer config.SaveDevices()

	if offline {
		s := newSession(nil, gatt.Device{}, false, devices, os.Stdout)
		status = runCommand(s, args, commandTimeout)
		return
	}

	device, err := config.Target()
	if err != nil {
		writeErr("Error: %s. Use -device to choose one.", err)
		return
	}

	transport, err := config.Transport()
	if err != nil {
		writeErr("Error: %s", err)
		return
	}
	defer transport.Close()

	s := newSession(transport, device, config.AutoConnect, devices, os.Stdout)
	defer s.close()

	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()
	if err := s.connect(ctx); err != nil {
		writeErr("Error: %s", err)
		return
	}

	if len(args) > 0 {
		status = runCommand(s, args, commandTimeout)
	} else {
		prompt := term.IsTerminal(int(os.Stdin.Fd()))
		status = runInteractiveShell(s, os.Stdin, prompt, commandTimeout)
	}
}
