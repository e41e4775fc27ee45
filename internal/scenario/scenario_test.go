package scenario

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/danmuck/mlbridge/internal/config"
	"github.com/danmuck/mlbridge/internal/conv"
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/logging"
	"github.com/danmuck/mlbridge/internal/testutil/testlog"
	"github.com/danmuck/mlbridge/internal/value"
)

var testRuntime *interop.Runtime

func TestMain(m *testing.M) {
	logging.ConfigureTests()
	cfg := config.Default()
	cfg.CheckStale = true
	cfg.Heap.Stress = true
	cfg.Metrics.Enabled = false
	cr, err := interop.Init(cfg)
	if err == nil {
		err = Install(cr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenario setup: %v\n", err)
		os.Exit(1)
	}
	testRuntime = cr
	code := m.Run()
	cr.Shutdown()
	os.Exit(code)
}

func TestTwice(t *testing.T) {
	testlog.Start(t)
	got, err := Twice(testRuntime, 10)
	if err != nil || got != 20 {
		t.Fatalf("twice(10) = %d, %v", got, err)
	}
	if got, _ := Twice(testRuntime, -21); got != -42 {
		t.Fatalf("twice(-21) = %d", got)
	}
}

func TestTwiceRangeErrors(t *testing.T) {
	testlog.Start(t)
	if _, err := Twice(testRuntime, value.MaxInt+1); !errors.Is(err, conv.ErrIntRange) {
		t.Fatalf("expected ErrIntRange, got %v", err)
	}
	if _, err := Twice(testRuntime, value.MaxInt); !errors.Is(err, ErrRaised) {
		t.Fatalf("expected overflow raised by the foreign side, got %v", err)
	}
}

func TestIncrementBytes(t *testing.T) {
	testlog.Start(t)
	got, err := IncrementBytes(testRuntime, "0000000000000000", 10)
	if err != nil {
		t.Fatalf("increment_bytes: %v", err)
	}
	if got != "1111111111000000" {
		t.Fatalf("increment_bytes = %q", got)
	}
}

func TestIncrementBytesRaisesOnBadCount(t *testing.T) {
	testlog.Start(t)
	_, err := IncrementBytes(testRuntime, "abc", 10)
	if !errors.Is(err, ErrRaised) {
		t.Fatalf("expected ErrRaised, got %v", err)
	}
}

func TestLifecycleHooksCallableByName(t *testing.T) {
	testlog.Start(t)
	if err := RunLifecycle(testRuntime, LifecycleTeardownName); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if testRuntime.Stats().RootsReady {
		t.Fatalf("roots should be torn down")
	}
	if err := RunLifecycle(testRuntime, LifecycleSetupName); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !testRuntime.Stats().RootsReady {
		t.Fatalf("roots should be ready after setup")
	}
	if got, err := Twice(testRuntime, 4); err != nil || got != 8 {
		t.Fatalf("twice after lifecycle = %d, %v", got, err)
	}
}

func TestScenariosSurviveRepeatedCalls(t *testing.T) {
	testlog.Start(t)
	for i := 0; i < 25; i++ {
		if got, err := Twice(testRuntime, int64(i)); err != nil || got != int64(2*i) {
			t.Fatalf("twice(%d) = %d, %v", i, got, err)
		}
	}
	if n := testRuntime.Stats().LocalRootScopes; n != 0 {
		t.Fatalf("expected no open frames, got %d", n)
	}
}
