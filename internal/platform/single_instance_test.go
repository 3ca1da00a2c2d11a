package platform

import (
	"fmt"
	"testing"
)

func TestSingleInstanceGuard(t *testing.T) {
	const name = "timepunch-guard-test"

	guard, err := AcquireSingleInstance(name)
	if err != nil {
		t.Fatalf("AcquireSingleInstance() error = %v", err)
	}
	if guard.Port() < instancePortMin || guard.Port() > instancePortMax {
		t.Errorf("Port() = %d, want within [%d, %d]", guard.Port(), instancePortMin, instancePortMax)
	}
	if want := fmt.Sprintf("127.0.0.1:%d", guard.Port()); guard.Address() != want {
		t.Errorf("Address() = %q, want %q", guard.Address(), want)
	}

	if _, err := AcquireSingleInstance(name); err != ErrAlreadyRunning {
		t.Errorf("second acquire error = %v, want ErrAlreadyRunning", err)
	}

	if err := guard.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	reacquired, err := AcquireSingleInstance(name)
	if err != nil {
		t.Fatalf("reacquire after release error = %v", err)
	}
	_ = reacquired.Release()
}

func TestPortFromNameDeterministic(t *testing.T) {
	if portFromName("timepunch") != portFromName("timepunch") {
		t.Error("portFromName() is not stable for the same name")
	}
	if portFromName("timepunch") == portFromName("timepunch-2") {
		t.Error("portFromName() collides for distinct names")
	}
}
