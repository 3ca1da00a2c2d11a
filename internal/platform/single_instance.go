package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another tracker instance already holds the
// lock. Two instances would race over the one persisted timer snapshot.
var ErrAlreadyRunning = errors.New("tracker already running")

// Single-instance ports are derived into this fixed range.
const (
	instancePortMin = 20000
	instancePortMax = 39999
)

// InstanceGuard holds the single-instance lock: a deterministic
// localhost port derived from the application name. The port doubles
// as a rendezvous point, so a second launch can later be taught to
// ping the running instance instead of just giving up.
type InstanceGuard struct {
	listener net.Listener
	port     int
}

// AcquireSingleInstance takes the lock for the named application.
// Failure to bind means another instance of the same application owns it.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	port := portFromName(appName)
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, port: port}, nil
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Port returns the port the lock is bound to.
func (guard *InstanceGuard) Port() int {
	if guard == nil {
		return 0
	}
	return guard.port
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return fmt.Sprintf("127.0.0.1:%d", guard.port)
}

func portFromName(appName string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := instancePortMax - instancePortMin + 1
	return instancePortMin + int(hash.Sum32()%uint32(rangeSize))
}
