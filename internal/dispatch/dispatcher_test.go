package dispatch

import (
	"errors"
	"testing"

	"github.com/danmuck/logowire/internal/observability"
	"github.com/danmuck/logowire/internal/protocol"
	"github.com/danmuck/logowire/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newFrontendRecorder(t *testing.T) (*Dispatcher, *recorder) {
	t.Helper()
	rec := &recorder{}
	d, err := NewFrontend(rec)
	if err != nil {
		t.Fatalf("new frontend dispatcher: %v", err)
	}
	return d, rec
}

func mustEncode(t *testing.T, p protocol.Payload) protocol.Message {
	t.Helper()
	msg, err := protocol.Encode(p)
	if err != nil {
		t.Fatalf("encode %T: %v", p, err)
	}
	return msg
}

func expectCalls(t *testing.T, rec *recorder, want ...string) {
	t.Helper()
	if len(rec.calls) != len(want) {
		t.Fatalf("calls=%q want %q", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Fatalf("call %d=%q want %q", i, rec.calls[i], want[i])
		}
	}
}

func TestDispatchSetTextSizeInvokesOnlyItsHandler(t *testing.T) {
	testlog.Start(t)
	d, rec := newFrontendRecorder(t)
	msg, err := protocol.EncodeSetTextSize(12.5)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := d.Dispatch(msg); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	expectCalls(t, rec, "set_text_size 12.5")
}

func TestDispatchPrintString(t *testing.T) {
	testlog.Start(t)
	d, rec := newFrontendRecorder(t)
	if err := d.Dispatch([]byte{byte(protocol.CmdConsolePrintString), 0, 0, 0, 2, 0, 'h', 0, 'i'}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	expectCalls(t, rec, `print_string "hi"`)
}

func TestDispatchClearText(t *testing.T) {
	testlog.Start(t)
	d, rec := newFrontendRecorder(t)
	if err := d.Dispatch([]byte{byte(protocol.CmdConsoleClearText)}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	expectCalls(t, rec, "clear_text")
}

func TestDispatchRoutesEveryFrontendCommand(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   protocol.Payload
		want string
	}{
		{protocol.PrintString{Text: "to square"}, `print_string "to square"`},
		{protocol.SetTextSize{Size: 9}, "set_text_size 9"},
		{protocol.SetCursorPos{Row: 2, Column: 5}, "set_cursor_pos 2 5"},
		{protocol.SetTextColor{Foreground: protocol.RGB(1, 2, 3), Background: protocol.Color{}}, "set_text_color {1 2 3 255} {0 0 0 0}"},
		{protocol.ClearText{}, "clear_text"},
		{protocol.SetFont{Name: "Monaco"}, `set_font "Monaco"`},
		{protocol.RequestCharacter{}, "request_character"},
		{protocol.RequestLine{Prompt: "? "}, `request_line "? "`},
		{protocol.RequestCursorPos{}, "request_cursor_pos"},
		{protocol.SetTurtlePos{X: 1.5, Y: -2, Heading: 90}, "set_turtle_pos 1.5 -2 90"},
	}
	for _, tc := range cases {
		d, rec := newFrontendRecorder(t)
		if err := d.Dispatch(mustEncode(t, tc.in)); err != nil {
			t.Fatalf("dispatch %T: %v", tc.in, err)
		}
		expectCalls(t, rec, tc.want)
	}
}

func TestDispatchUnknownCommandIgnored(t *testing.T) {
	testlog.Start(t)
	d, rec := newFrontendRecorder(t)
	before := testutil.ToFloat64(observability.DispatchCounter(SideFrontend, "command(200)", observability.OutcomeUnknown))

	for _, msg := range [][]byte{{200}, {200, 1, 2, 3}, {0xff}} {
		if err := d.Dispatch(msg); err != nil {
			t.Fatalf("unknown command % x: expected nil error, got %v", msg, err)
		}
	}
	expectCalls(t, rec)

	after := testutil.ToFloat64(observability.DispatchCounter(SideFrontend, "command(200)", observability.OutcomeUnknown))
	if after != before+2 {
		t.Fatalf("unknown counter: before=%v after=%v", before, after)
	}
}

func TestDispatchResponsesAreUnknownToFrontend(t *testing.T) {
	testlog.Start(t)
	d, rec := newFrontendRecorder(t)
	msg := mustEncode(t, protocol.LineResponse{Text: "ignored"})
	if d.Handles(protocol.CmdConsoleLineResponse) {
		t.Fatalf("frontend table must not route kernel-bound commands")
	}
	if err := d.Dispatch(msg); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	expectCalls(t, rec)
}

func TestDispatchTruncatedReportsMalformed(t *testing.T) {
	testlog.Start(t)
	payloads := []protocol.Payload{
		protocol.PrintString{Text: "hi"},
		protocol.SetTextSize{Size: 12.5},
		protocol.SetCursorPos{Row: 1, Column: 1},
		protocol.SetTextColor{},
		protocol.SetFont{Name: ""},
		protocol.RequestLine{Prompt: "x"},
		protocol.SetTurtlePos{},
	}
	for _, p := range payloads {
		msg := mustEncode(t, p)
		for n := len(msg) - 1; n >= 1; n-- {
			d, rec := newFrontendRecorder(t)
			err := d.Dispatch(msg[:n])
			if !errors.Is(err, protocol.ErrMalformedPayload) {
				t.Fatalf("%T cut to %d: expected ErrMalformedPayload, got %v", p, n, err)
			}
			expectCalls(t, rec)
		}
	}
}

func TestDispatchMalformedDoesNotBlockLaterMessages(t *testing.T) {
	testlog.Start(t)
	d, rec := newFrontendRecorder(t)
	good := mustEncode(t, protocol.PrintString{Text: "ok"})

	if err := d.Dispatch(good[:3]); err == nil {
		t.Fatalf("expected malformed error")
	}
	if err := d.Dispatch(good); err != nil {
		t.Fatalf("dispatch after malformed: %v", err)
	}
	expectCalls(t, rec, `print_string "ok"`)
	if d.State() != StateIdle {
		t.Fatalf("dispatcher left in state %s", d.State())
	}
}

func TestDispatchEmptyMessage(t *testing.T) {
	testlog.Start(t)
	d, rec := newFrontendRecorder(t)
	if err := d.Dispatch(nil); !errors.Is(err, protocol.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	expectCalls(t, rec)
}

func TestDispatchRejectsReentrantCall(t *testing.T) {
	testlog.Start(t)
	d, rec := newFrontendRecorder(t)
	inner := mustEncode(t, protocol.ClearText{})
	var innerErr error
	var innerState State
	rec.during = func() {
		rec.during = nil
		innerState = d.State()
		innerErr = d.Dispatch(inner)
	}
	if err := d.Dispatch(mustEncode(t, protocol.PrintString{Text: "outer"})); err != nil {
		t.Fatalf("outer dispatch: %v", err)
	}
	if !errors.Is(innerErr, ErrReentrantDispatch) {
		t.Fatalf("expected ErrReentrantDispatch, got %v", innerErr)
	}
	if innerState != StateDispatching {
		t.Fatalf("expected dispatching state inside handler, got %s", innerState)
	}
	expectCalls(t, rec, `print_string "outer"`)
	if d.State() != StateIdle {
		t.Fatalf("dispatcher left in state %s", d.State())
	}
}

func TestDispatchKernelResponses(t *testing.T) {
	testlog.Start(t)
	rec := &recorder{}
	d, err := NewKernel(rec)
	if err != nil {
		t.Fatalf("new kernel dispatcher: %v", err)
	}
	for _, p := range []protocol.Payload{
		protocol.CharacterResponse{Char: 'y'},
		protocol.LineResponse{Text: "repeat 4 [fd 50 rt 90]"},
		protocol.CursorPosResponse{Row: 4, Column: 0},
		protocol.PrintString{Text: "not for the kernel"},
	} {
		if err := d.Dispatch(mustEncode(t, p)); err != nil {
			t.Fatalf("dispatch %T: %v", p, err)
		}
	}
	expectCalls(t, rec,
		"character_response 'y'",
		`line_response "repeat 4 [fd 50 rt 90]"`,
		"cursor_pos_response 4 0",
	)
}

func TestNewDispatcherRejectsNilHandler(t *testing.T) {
	if _, err := NewFrontend(nil); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
	if _, err := NewKernel(nil); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
}
