package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/protocol"
)

// Terminal renders onto a character terminal and reads requests from its
// input. The embedded Buffer tracks the logical state, so cursor queries are
// answered from the model rather than by interrogating the terminal.
type Terminal struct {
	*Buffer

	out *termenv.Output
	in  *bufio.Reader
	fd  int
	raw bool

	readMu sync.Mutex
}

type TerminalOption func(*terminalOptions)

type terminalOptions struct {
	output []termenv.OutputOption
}

// WithOutputOptions passes options through to termenv, e.g. a fixed profile.
func WithOutputOptions(opts ...termenv.OutputOption) TerminalOption {
	return func(o *terminalOptions) { o.output = append(o.output, opts...) }
}

func NewTerminal(out io.Writer, in io.Reader, replies Replies, settings Settings, opts ...TerminalOption) *Terminal {
	var o terminalOptions
	for _, opt := range opts {
		opt(&o)
	}
	t := &Terminal{
		Buffer: NewBuffer(replies, settings),
		out:    termenv.NewOutput(out, o.output...),
		fd:     -1,
	}
	if in != nil {
		t.in = bufio.NewReader(in)
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			t.fd = int(f.Fd())
			t.raw = true
		}
	}
	return t
}

func (t *Terminal) PrintString(text string) {
	t.Buffer.PrintString(text)
	snap := t.Buffer.Snapshot()
	t.render(text, snap.Foreground, snap.Background)
}

func (t *Terminal) SetCursorPos(row, column int32) {
	t.Buffer.SetCursorPos(row, column)
	t.out.MoveCursor(int(row)+1, int(column)+1)
}

func (t *Terminal) ClearText() {
	t.Buffer.ClearText()
	t.out.ClearScreen()
}

func (t *Terminal) SetTextSize(size float64) {
	t.Buffer.SetTextSize(size)
	logs.Debugf("console.Terminal text size=%g not representable", size)
}

func (t *Terminal) SetFont(name string) {
	t.Buffer.SetFont(name)
	logs.Debugf("console.Terminal font=%q not representable", name)
}

func (t *Terminal) SetTurtlePos(x, y, heading float64) {
	t.Buffer.SetTurtlePos(x, y, heading)
	t.out.SetWindowTitle(fmt.Sprintf("turtle %.1f,%.1f heading %.1f", x, y, heading))
}

func (t *Terminal) RequestCharacter() {
	if t.in == nil {
		t.Buffer.RequestCharacter()
		return
	}
	go t.readCharacter()
}

func (t *Terminal) RequestLine(prompt string) {
	if t.in == nil {
		t.Buffer.RequestLine(prompt)
		return
	}
	t.PrintString(prompt)
	go t.readLine()
}

func (t *Terminal) readCharacter() {
	t.readMu.Lock()
	defer t.readMu.Unlock()
	if t.raw {
		state, err := term.MakeRaw(t.fd)
		if err != nil {
			logs.Warnf("console.Terminal raw mode err=%v", err)
		} else {
			defer func() { _ = term.Restore(t.fd, state) }()
		}
	}
	ch, _, err := t.in.ReadRune()
	if err != nil {
		t.inputFailed("character", err)
		return
	}
	t.Buffer.reply(protocol.CharacterResponse{Char: ch})
}

func (t *Terminal) readLine() {
	t.readMu.Lock()
	defer t.readMu.Unlock()
	line, err := t.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		t.inputFailed("line", err)
		return
	}
	line = strings.TrimRight(line, "\r\n")
	// the terminal echoed the line; keep the model in step
	t.Buffer.mu.Lock()
	t.Buffer.write(line + "\n")
	t.Buffer.mu.Unlock()
	t.Buffer.reply(protocol.LineResponse{Text: line})
}

func (t *Terminal) inputFailed(kind string, err error) {
	if errors.Is(err, io.EOF) {
		logs.Infof("console.Terminal input closed while reading %s", kind)
		return
	}
	logs.Errf("console.Terminal read %s err=%v", kind, err)
}

func (t *Terminal) render(text string, fg, bg protocol.Color) {
	style := t.out.String(text)
	if fg.A != 0 {
		style = style.Foreground(t.out.Color(hexColor(fg)))
	}
	if bg.A != 0 {
		style = style.Background(t.out.Color(hexColor(bg)))
	}
	if _, err := io.WriteString(t.out, style.String()); err != nil {
		logs.Errf("console.Terminal write err=%v", err)
	}
}

func hexColor(c protocol.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
