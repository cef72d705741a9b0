package findme

import (
	"fmt"

	"github.com/tieto/bleprofile/pkg/gatt"
	"github.com/tieto/bleprofile/pkg/profile"
)

// ErrInvalidAlertLevel is returned by FindMe for levels other than NoAlert, Mid and High.
var ErrInvalidAlertLevel = profile.NewError("alert level out of range", true, false)

// AlertLevel is the value of the Alert Level characteristic.
type AlertLevel uint8

const (
	NoAlert AlertLevel = 0
	Mid     AlertLevel = 1
	High    AlertLevel = 2
)

var alertLevelNames = map[AlertLevel]string{
	NoAlert: "none",
	Mid:     "mid",
	High:    "high",
}

// ParseAlertLevel accepts the names "none", "mid" and "high" as well as the numeric values.
func ParseAlertLevel(s string) (AlertLevel, error) {
	for level, name := range alertLevelNames {
		if s == name || s == fmt.Sprint(uint8(level)) {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: '%s'", ErrInvalidAlertLevel, s)
}

func (a AlertLevel) Valid() bool {
	return a <= High
}

func (a AlertLevel) String() string {
	if name, ok := alertLevelNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AlertLevel(%d)", uint8(a))
}

// State is the client-side view of the peer's alert level: the last level whose write was
// acknowledged, and the writes that are still in flight, oldest first.
type State struct {
	Current AlertLevel
	Pending []AlertLevel
}

// Input drives a State transition.
type Input interface {
	isInput()
}

// WriteStarted records that a write of Level was accepted by the transport.
type WriteStarted struct{ Level AlertLevel }

// WriteRejected withdraws the most recent WriteStarted when the transport turned the write down
// after all.
type WriteRejected struct{}

// WriteCompleted reports the completion of the oldest pending write.
type WriteCompleted struct{ Status gatt.Status }

// Reset forgets everything: the peer's alert state cannot be assumed across connections.
type Reset struct{}

func (WriteStarted) isInput()   {}
func (WriteRejected) isInput()  {}
func (WriteCompleted) isInput() {}
func (Reset) isInput()          {}

// Next returns the state that follows prior after in. It does not modify prior.
func Next(prior State, in Input) State {
	next := State{Current: prior.Current, Pending: append([]AlertLevel(nil), prior.Pending...)}
	switch in := in.(type) {
	case WriteStarted:
		next.Pending = append(next.Pending, in.Level)
	case WriteRejected:
		if n := len(next.Pending); n > 0 {
			next.Pending = next.Pending[:n-1]
		}
	case WriteCompleted:
		if len(next.Pending) == 0 {
			return next
		}
		level := next.Pending[0]
		next.Pending = next.Pending[1:]
		if in.Status.Success() {
			next.Current = level
		}
	case Reset:
		return State{Current: NoAlert}
	}
	if len(next.Pending) == 0 {
		next.Pending = nil
	}
	return next
}
