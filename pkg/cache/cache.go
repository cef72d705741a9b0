package cache

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/profile/battery"
	"github.com/tieto/bleprofile/pkg/profile/findme"
)

// Record is the last known state of one device.
type Record struct {
	Address    string            `json:"address"`
	Name       string            `json:"name,omitempty"`
	LastSeen   time.Time         `json:"last_seen"`
	Battery    *battery.Reading  `json:"battery,omitempty"`
	AlertLevel findme.AlertLevel `json:"alert_level"`
}

// Device returns the gatt.Device the record describes.
func (r Record) Device() gatt.Device {
	return gatt.Device{Address: r.Address, Name: r.Name}
}

type DeviceCache struct {
	MaxEntries int
	Devices    map[string]Record `json:"devices"`
	lock       sync.Mutex
}

// New returns a DeviceCache that holds up to maxEntries devices. When the cache is full, the
// device with the oldest LastSeen time is evicted.
//
// Set maxEntries to zero for an unbounded cache.
func New(maxEntries int) *DeviceCache {
	return &DeviceCache{
		MaxEntries: maxEntries,
		Devices:    make(map[string]Record),
	}
}

func key(address string) string {
	return strings.ToLower(address)
}

// Import a DeviceCache using data in r.
// The data should previously have been generated using [DeviceCache.Export].
func Import(r io.Reader) (*DeviceCache, error) {
	var cache DeviceCache
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cache); err != nil {
		return nil, err
	}
	if cache.Devices == nil {
		cache.Devices = make(map[string]Record)
	}
	return &cache, nil
}

// ImportFromFile reads a DeviceCache from disk.
func ImportFromFile(filename string) (*DeviceCache, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Import(file)
}

// Export writes a serialized DeviceCache to w.
func (c *DeviceCache) Export(w io.Writer) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return json.NewEncoder(w).Encode(c)
}

// ExportToFile writes a DeviceCache to disk, replacing the file's contents.
func (c *DeviceCache) ExportToFile(filename string) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	return c.Export(file)
}

// Update stores r, replacing any record with the same address. Address comparison is
// case-insensitive.
func (c *DeviceCache) Update(r Record) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.update(r)
}

// update must be called with c.lock held.
func (c *DeviceCache) update(r Record) {
	if c.Devices == nil {
		c.Devices = make(map[string]Record)
	}
	c.Devices[key(r.Address)] = r
	if c.MaxEntries > 0 && len(c.Devices) > c.MaxEntries {
		oldest := key(r.Address)
		oldestSeen := r.LastSeen
		for k, record := range c.Devices {
			if record.LastSeen.Before(oldestSeen) {
				oldest = k
				oldestSeen = record.LastSeen
			}
		}
		delete(c.Devices, oldest)
	}
}

// Modify applies f to the record for address and stores the result. A new record is created
// if the address is unknown. f runs with the cache locked and must not call back into it.
func (c *DeviceCache) Modify(address string, f func(*Record)) {
	c.lock.Lock()
	defer c.lock.Unlock()

	r, ok := c.Devices[key(address)]
	if !ok {
		r = Record{Address: address}
	}
	f(&r)
	c.update(r)
}

// Get returns the record for address.
func (c *DeviceCache) Get(address string) (Record, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	r, ok := c.Devices[key(address)]
	return r, ok
}

// MostRecent returns the record with the latest LastSeen time.
func (c *DeviceCache) MostRecent() (Record, bool) {
	records := c.Records()
	if len(records) == 0 {
		return Record{}, false
	}
	return records[0], true
}

// Records returns all records, most recently seen first.
func (c *DeviceCache) Records() []Record {
	c.lock.Lock()
	records := make([]Record, 0, len(c.Devices))
	for _, r := range c.Devices {
		records = append(records, r)
	}
	c.lock.Unlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].LastSeen.Equal(records[j].LastSeen) {
			return records[i].Address < records[j].Address
		}
		return records[i].LastSeen.After(records[j].LastSeen)
	})
	return records
}
