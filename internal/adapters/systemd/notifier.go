// Package systemd signals readiness to the service manager.
package systemd

import (
	"errors"

	"github.com/coreos/go-systemd/v22/daemon"
)

// ErrNotSupervised is returned when NOTIFY_SOCKET is not set.
var ErrNotSupervised = errors.New("not running under a notify-capable service manager")

// Notifier implements ports.Supervisor via sd_notify.
type Notifier struct {
	notify func(unsetEnvironment bool, state string) (bool, error)
}

// NewNotifier creates a notifier using the NOTIFY_SOCKET of the process.
func NewNotifier() *Notifier {
	return &Notifier{notify: daemon.SdNotify}
}

// NotifyReady sends READY=1 and unsets NOTIFY_SOCKET so child processes
// cannot signal on behalf of this service.
func (n *Notifier) NotifyReady() error {
	sent, err := n.notify(true, daemon.SdNotifyReady)
	if err != nil {
		return err
	}
	if !sent {
		return ErrNotSupervised
	}
	return nil
}
