package ports

// Supervisor is the host process manager (systemd).
type Supervisor interface {
	// NotifyReady tells the supervisor that startup work is complete.
	NotifyReady() error
}
