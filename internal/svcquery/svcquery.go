package svcquery

import (
	"errors"
	"fmt"

	"github.com/breeze-rmm/trendprobe/internal/logging"
)

var log = logging.L("svcquery")

// ErrNotSupported is returned where the service manager cannot be queried.
var ErrNotSupported = errors.New("svcquery: service manager not supported on this platform")

// ErrNotFound is returned when the named service does not exist.
var ErrNotFound = errors.New("svcquery: service not found")

// State is the run-state of a named service as the probe sees it.
type State string

const (
	StateRunning  State = "running"
	StateStopped  State = "stopped"
	StateNotFound State = "not_found"
	StateError    State = "error"
)

// Probe reports the run-state of a named service. Implementations never
// fail; query problems surface as StateNotFound or StateError.
type Probe interface {
	Status(name string) State
}

// SCM is the Probe backed by the operating system's service manager.
type SCM struct{}

// Status implements Probe.
func (SCM) Status(name string) State {
	state, err := GetStatus(name)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Debug("service not installed", logging.KeyService, name)
		return StateNotFound
	case err != nil:
		log.Debug("service query failed", logging.KeyService, name, logging.KeyError, err)
		return StateError
	}
	return state
}

// AnyRunning returns true if at least one of names reports StateRunning.
// Every name is queried so the trace shows the full picture.
func AnyRunning(p Probe, names []string) bool {
	running := false
	for _, name := range names {
		state := status(p, name)
		log.Debug("service state", logging.KeyService, name, "state", string(state))
		if state == StateRunning {
			running = true
		}
	}
	return running
}

// status queries one service; a panicking probe reports StateError.
func status(p Probe, name string) (state State) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("service query panicked", logging.KeyService, name, logging.KeyError, fmt.Sprint(r))
			state = StateError
		}
	}()
	return p.Status(name)
}
