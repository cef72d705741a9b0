/*
Package cli facilitates building command-line applications that talk to BLE profile peripherals.
It defines a [Config] type that can be used to register common command-line flags (using the
Golang flag package), environment variable equivalents and an optional YAML configuration file.

# Examples

	import flag

	config, err := NewConfig(FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags() // Adds command-line flags for the device, adapter, etc.
	flag.Parse()
	config.ReadFromEnvironment()      // Fills in missing fields using environment variables
	if err := config.ReadFromFile(); err != nil { // Fills in remaining fields from the YAML file
		panic(err)
	}

	transport, err := config.Transport()
	if err != nil {
		panic(err)
	}
	defer transport.Close()

	device, err := config.Target() // The configured device, or the most recently used one
	if err != nil {
		panic(err)
	}
	defer config.SaveDevices()

Command-line flags take precedence over environment variables, which take precedence over the
configuration file. Boolean options can only be switched on by a lower-precedence source.
*/
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tieto/bleprofile/internal/log"
	"github.com/tieto/bleprofile/pkg/cache"
	"github.com/tieto/bleprofile/pkg/connector/ble"
	"github.com/tieto/bleprofile/pkg/gatt"
)

// Environment variable names used are used by [Config.ReadFromEnvironment] to set common parameters.
const (
	EnvDevice      = "BLE_DEVICE"
	EnvAdapter     = "BLE_ADAPTER"
	EnvBackend     = "BLE_BACKEND"
	EnvCacheFile   = "BLE_CACHE_FILE"
	EnvAutoConnect = "BLE_AUTO_CONNECT"
	EnvVerbose     = "BLE_VERBOSE"
	EnvConfigFile  = "BLE_CONFIG"
)

// Flag controls what options should be scanned from the command line and/or environment variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagDevice  Flag = 1 // Enable device address and auto-connect options.
	FlagAdapter Flag = 2 // Enable adapter and backend options.
	FlagCache   Flag = 4 // Enable the device cache option.
	FlagAll     Flag = FlagDevice | FlagAdapter | FlagCache
)

var (
	ErrNoDevice = errors.New("no device address provided and no device cached")
)

// Config fields determine which adapter is used and which device a client talks to.
type Config struct {
	Flags          Flag   `yaml:"-"` // Controls which set of environment variables/CLI flags to use.
	ConfigFilename string `yaml:"-"`
	Device         string `yaml:"device"`
	AdapterID      string `yaml:"adapter"`
	Backend        string `yaml:"backend"`
	CacheFilename  string `yaml:"cache_file"`
	AutoConnect    bool   `yaml:"auto_connect"`
	Verbose        bool   `yaml:"verbose"`

	devices *cache.DeviceCache
}

func NewConfig(flags Flag) (*Config, error) {
	return &Config{Flags: flags}, nil
}

// DefaultConfigFilename returns ~/.config/bleprofile/config.yaml, or an empty string if the home
// directory is unknown.
func DefaultConfigFilename() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bleprofile", "config.yaml")
}

// RegisterCommandLineFlags registers c's options with the flag package's default FlagSet.
func (c *Config) RegisterCommandLineFlags() {
	c.RegisterFlags(flag.CommandLine)
}

// RegisterFlags registers c's options with fs.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFilename, "config", "", "YAML configuration `file`. Defaults to $BLE_CONFIG, then ~/.config/bleprofile/config.yaml.")
	fs.BoolVar(&c.Verbose, "debug", false, "Enable verbose debugging messages. Defaults to $BLE_VERBOSE.")
	if c.Flags.isSet(FlagDevice) {
		fs.StringVar(&c.Device, "device", "", "Bluetooth `address` of the peer. Defaults to $BLE_DEVICE, then the most recently used device.")
		fs.BoolVar(&c.AutoConnect, "auto-connect", false, "Keep reconnecting whenever the device is in range. Defaults to $BLE_AUTO_CONNECT.")
	}
	if c.Flags.isSet(FlagAdapter) {
		fs.StringVar(&c.Backend, "backend", "", "BLE `stack` to use (tinygo|goble). Defaults to $BLE_BACKEND, then tinygo.")
		c.registerFlagsOsSpecific(fs)
	}
	if c.Flags.isSet(FlagCache) {
		fs.StringVar(&c.CacheFilename, "device-cache", "", "Load known devices from `file`. Defaults to $BLE_CACHE_FILE.")
	}
}

// ReadFromEnvironment populates c using environment variables. Values that are already populated
// are not overwritten.
//
// Calling ReadFromEnvironment after flag.Parse() (or other initialization method) will prevent the
// environment from overriding explicit command-line parameters and avoid potentially misleading
// debug log messages.
func (c *Config) ReadFromEnvironment() {
	if c.ConfigFilename == "" {
		c.ConfigFilename = os.Getenv(EnvConfigFile)
	}
	if !c.Verbose {
		c.Verbose = envBool(EnvVerbose)
	}
	if c.Flags.isSet(FlagDevice) {
		if c.Device == "" {
			c.Device = os.Getenv(EnvDevice)
			log.Debug("Set device to '%s'", c.Device)
		}
		if !c.AutoConnect {
			c.AutoConnect = envBool(EnvAutoConnect)
			log.Debug("Set auto-connect to '%v'", c.AutoConnect)
		}
	}
	if c.Flags.isSet(FlagAdapter) {
		if c.Backend == "" {
			c.Backend = os.Getenv(EnvBackend)
			log.Debug("Set BLE backend to '%s'", c.Backend)
		}
		if c.AdapterID == "" {
			c.AdapterID = os.Getenv(EnvAdapter)
			log.Debug("Set adapter to '%s'", c.AdapterID)
		}
	}
	if c.Flags.isSet(FlagCache) {
		if c.CacheFilename == "" {
			c.CacheFilename = os.Getenv(EnvCacheFile)
			log.Debug("Set device cache file to '%s'", c.CacheFilename)
		}
	}
}

func envBool(name string) bool {
	value, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	if value == "" {
		return true
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warning("Ignoring $%s: %s", name, err)
		return false
	}
	return b
}

// ReadFromFile populates c using the YAML file named by c.ConfigFilename. Values that are already
// populated are not overwritten.
//
// If c.ConfigFilename is empty, the default location is tried and a missing file there is not
// an error.
func (c *Config) ReadFromFile() error {
	filename := c.ConfigFilename
	explicit := filename != ""
	if !explicit {
		filename = DefaultConfigFilename()
		if filename == "" {
			return nil
		}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	log.Debug("Loaded configuration from %s", filename)

	fill(&c.Verbose, file.Verbose)
	if c.Flags.isSet(FlagDevice) {
		fill(&c.Device, file.Device)
		fill(&c.AutoConnect, file.AutoConnect)
	}
	if c.Flags.isSet(FlagAdapter) {
		fill(&c.Backend, file.Backend)
		fill(&c.AdapterID, file.AdapterID)
	}
	if c.Flags.isSet(FlagCache) {
		fill(&c.CacheFilename, expandTilde(file.CacheFilename))
	}
	return nil
}

func fill[T comparable](dst *T, value T) {
	var zero T
	if *dst == zero {
		*dst = value
	}
}

func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// LogLevel returns the log level the configuration asks for.
func (c *Config) LogLevel() log.Level {
	if c.Verbose {
		return log.LevelDebug
	}
	return log.LevelInfo
}

// BLEBackend returns the configured BLE stack.
func (c *Config) BLEBackend() (ble.Backend, error) {
	return ble.ParseBackend(c.Backend)
}

// Transport initializes the configured adapter.
func (c *Config) Transport() (gatt.Transport, error) {
	backend, err := c.BLEBackend()
	if err != nil {
		return nil, err
	}
	log.Debug("Initializing %s adapter '%s'", backend, c.AdapterID)
	transport, err := ble.NewTransport(backend, c.AdapterID)
	if err != nil {
		if ble.IsAdapterError(backend, err) {
			log.Error("%s", ble.AdapterErrorHelpMessage(backend, err))
		}
		return nil, err
	}
	return transport, nil
}

// Devices returns the device cache, loading it from c.CacheFilename on first use. Without a
// cache file an empty in-memory cache is returned.
func (c *Config) Devices() (*cache.DeviceCache, error) {
	if c.devices != nil {
		return c.devices, nil
	}
	if err := c.loadCache(); err != nil {
		return nil, err
	}
	return c.devices, nil
}

func (c *Config) loadCache() error {
	if c.CacheFilename == "" {
		c.devices = cache.New(maxCachedDevices)
		return nil
	}
	log.Debug("Loading cache from %s...", c.CacheFilename)
	var err error
	c.devices, err = cache.ImportFromFile(c.CacheFilename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load device cache: %s", err)
		}
		// Create a new cache if one couldn't be loaded from the file
		c.devices = cache.New(maxCachedDevices)
	}
	return nil
}

const maxCachedDevices = 16

// Target returns the device to connect to: c.Device if set, otherwise the most recently seen
// device in the cache.
func (c *Config) Target() (gatt.Device, error) {
	devices, err := c.Devices()
	if err != nil {
		return gatt.Device{}, err
	}
	if c.Device != "" {
		device := gatt.Device{Address: c.Device}
		if r, ok := devices.Get(c.Device); ok {
			device.Name = r.Name
		}
		return device, nil
	}
	if r, ok := devices.MostRecent(); ok {
		log.Debug("Using most recent device %s", r.Device())
		return r.Device(), nil
	}
	return gatt.Device{}, ErrNoDevice
}

// MarkSeen records that device was connected just now.
func (c *Config) MarkSeen(device gatt.Device) error {
	devices, err := c.Devices()
	if err != nil {
		return err
	}
	devices.Modify(device.Address, func(r *cache.Record) {
		if device.Name != "" {
			r.Name = device.Name
		}
		r.LastSeen = time.Now()
	})
	return nil
}

// SaveDevices writes the device cache to c.CacheFilename.
//
// If c.CacheFilename is not set or the cache was never loaded, then this method does nothing.
func (c *Config) SaveDevices() {
	if c.CacheFilename != "" && c.devices != nil {
		if err := c.devices.ExportToFile(c.CacheFilename); err != nil {
			log.Error("Error updating cache: %s", err)
		}
	}
}
