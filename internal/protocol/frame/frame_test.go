package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/logowire/internal/protocol"
)

func TestReadWriteFrameRoundTrip(t *testing.T) {
	first, _ := protocol.EncodePrintString("hi")
	second, _ := protocol.EncodeClearText()

	var buf bytes.Buffer
	for _, msg := range []protocol.Message{first, second} {
		if err := WriteFrame(&buf, msg, DefaultLimits()); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
	for _, want := range []protocol.Message{first, second} {
		got, err := ReadFrame(&buf, DefaultLimits())
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame mismatch: % x want % x", got, []byte(want))
		}
	}
	if _, err := ReadFrame(&buf, DefaultLimits()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF at clean end, got %v", err)
	}
}

func TestWriteFrameLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte{4}, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 1, 4}) {
		t.Fatalf("unexpected layout: % x", buf.Bytes())
	}
}

func TestReadFrameMalformedHeaderIsDeterministic(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0, 0}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadFrameShortBody(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0, 0, 0, 3, 1}), DefaultLimits())
	if !errors.Is(err, ErrShortBody) {
		t.Fatalf("expected ErrShortBody, got %v", err)
	}
}

func TestFrameLimits(t *testing.T) {
	limits := Limits{MaxFrameBytes: 2}
	if err := WriteFrame(io.Discard, []byte{1, 2, 3}, limits); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge on write, got %v", err)
	}
	if _, err := ReadFrame(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}), limits); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge on read, got %v", err)
	}
	if err := WriteFrame(io.Discard, nil, limits); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("expected ErrEmptyFrame on write, got %v", err)
	}
	if _, err := ReadFrame(bytes.NewReader([]byte{0, 0, 0, 0}), limits); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("expected ErrEmptyFrame on read, got %v", err)
	}
}

func TestDefaultLimitsFitLargestText(t *testing.T) {
	largest := 1 + 4 + protocol.MaxTextUnits*2
	if uint64(largest) > uint64(DefaultLimits().MaxFrameBytes) {
		t.Fatalf("default limit %d below largest message %d", DefaultLimits().MaxFrameBytes, largest)
	}
}

func TestZeroLimitsFallBackToDefault(t *testing.T) {
	var zero Limits
	if zero.Max() != DefaultLimits().MaxFrameBytes {
		t.Fatalf("zero limits should use default, got %d", zero.Max())
	}
	// a header claiming 4 GiB-1 must be refused before any allocation
	head := []byte{0xff, 0xff, 0xff, 0xff}
	if _, err := ReadFrame(bytes.NewReader(head), zero); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}
