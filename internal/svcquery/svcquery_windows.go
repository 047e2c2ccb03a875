//go:build windows

package svcquery

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// GetStatus queries a single Windows service by name.
func GetStatus(name string) (State, error) {
	m, err := mgr.Connect()
	if err != nil {
		return StateError, fmt.Errorf("svcquery: connect to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err != nil {
		if errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST) {
			return StateNotFound, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return StateError, fmt.Errorf("svcquery: open service %s: %w", name, err)
	}
	defer s.Close()

	status, err := s.Query()
	if err != nil {
		return StateError, fmt.Errorf("svcquery: query %s: %w", name, err)
	}
	return mapWindowsState(status.State), nil
}

// Only a service that reports Running counts; one stuck in a pending
// transition is not protecting the host yet.
func mapWindowsState(state svc.State) State {
	switch state {
	case svc.Running:
		return StateRunning
	case svc.Stopped, svc.Paused, svc.StartPending, svc.ContinuePending, svc.StopPending, svc.PausePending:
		return StateStopped
	default:
		return StateError
	}
}
