package observability

import (
	"testing"
	"time"

	"github.com/danmuck/mlbridge/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("mlbridge", "GET", "/health", 200, 12*time.Millisecond)
	RecordFrameOpened()
	RecordBlockingSection(3*time.Millisecond, false)
	RecordBlockingSection(time.Millisecond, true)
	RecordClosureCall("twice", false)
	RecordClosureCall("twice", true)
}

func TestRootGaugeTracksRegistrations(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	base := testutil.ToFloat64(liveRoots)
	RecordRootRegistered()
	RecordRootRegistered()
	RecordRootRemoved()
	if got := testutil.ToFloat64(liveRoots) - base; got != 1 {
		t.Fatalf("expected live roots delta 1, got %v", got)
	}
}
