package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(DispatchCounter("frontend", "console.clear_text", OutcomeApplied))
	RecordDispatch("frontend", "console.clear_text", OutcomeApplied)
	after := testutil.ToFloat64(DispatchCounter("frontend", "console.clear_text", OutcomeApplied))
	if after != before+1 {
		t.Fatalf("dispatch counter did not advance: before=%v after=%v", before, after)
	}

	RecordFrame("stream", "send", 9)
	if got := testutil.ToFloat64(FrameCounter("stream", "send")); got < 1 {
		t.Fatalf("frame counter not recorded: %v", got)
	}
}
