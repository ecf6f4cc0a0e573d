// Package console provides presentation surfaces for kernel commands: an
// in-memory Buffer and a Terminal that renders through termenv.
package console

import (
	"strings"
	"sync"

	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/protocol"
)

// Replies queues answers for the kernel without blocking the caller.
// transport.Outbox satisfies it.
type Replies interface {
	Enqueue(msg []byte) error
}

// Settings holds the initial presentation state.
type Settings struct {
	TextSize   float64
	Font       string
	Foreground protocol.Color
	Background protocol.Color
}

func DefaultSettings() Settings {
	return Settings{
		TextSize:   12,
		Font:       "Courier",
		Foreground: protocol.RGB(0xff, 0xff, 0xff),
		Background: protocol.RGB(0x00, 0x00, 0x00),
	}
}

type Turtle struct {
	X, Y, Heading float64
}

// Snapshot is a copy of the surface state.
type Snapshot struct {
	Lines      []string
	Row        int32
	Column     int32
	TextSize   float64
	Font       string
	Foreground protocol.Color
	Background protocol.Color
	Turtle     Turtle
	Waiting    string
}

// Buffer is a headless surface. Text is kept as rows of runes; writes land
// at the cursor and overwrite what is there. Input arrives through Feed and
// answers pending requests.
type Buffer struct {
	mu       sync.Mutex
	replies  Replies
	settings Settings

	lines    [][]rune
	row, col int32
	size     float64
	font     string
	fg, bg   protocol.Color
	turtle   Turtle

	input    []rune
	wantChar bool
	wantLine bool
}

func NewBuffer(replies Replies, settings Settings) *Buffer {
	b := &Buffer{replies: replies, settings: settings}
	b.reset()
	return b
}

func (b *Buffer) PrintString(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.write(text)
}

func (b *Buffer) SetTextSize(size float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.size = size
}

func (b *Buffer) SetCursorPos(row, column int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.row, b.col = max(row, 0), max(column, 0)
}

func (b *Buffer) SetTextColor(foreground, background protocol.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fg, b.bg = foreground, background
}

func (b *Buffer) ClearText() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = [][]rune{nil}
	b.row, b.col = 0, 0
}

func (b *Buffer) SetFont(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.font = name
}

func (b *Buffer) RequestCharacter() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.wantChar {
		logs.Warnf("console.Buffer character request already pending")
	}
	b.wantChar = true
	b.serve()
}

func (b *Buffer) RequestLine(prompt string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.wantLine {
		logs.Warnf("console.Buffer line request already pending")
	}
	b.write(prompt)
	b.wantLine = true
	b.serve()
}

func (b *Buffer) RequestCursorPos() {
	b.mu.Lock()
	row, col := b.row, b.col
	b.mu.Unlock()
	b.reply(protocol.CursorPosResponse{Row: row, Column: col})
}

func (b *Buffer) SetTurtlePos(x, y, heading float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turtle = Turtle{X: x, Y: y, Heading: heading}
}

// Feed queues typed input. Lines end at '\n'.
func (b *Buffer) Feed(input string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input = append(b.input, []rune(input)...)
	b.serve()
}

// Text returns the rows joined by newlines.
func (b *Buffer) Text() string {
	return strings.Join(b.Snapshot().Lines, "\n")
}

func (b *Buffer) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := make([]string, len(b.lines))
	for i, l := range b.lines {
		lines[i] = string(l)
	}
	var waiting string
	switch {
	case b.wantChar:
		waiting = "character"
	case b.wantLine:
		waiting = "line"
	}
	return Snapshot{
		Lines:      lines,
		Row:        b.row,
		Column:     b.col,
		TextSize:   b.size,
		Font:       b.font,
		Foreground: b.fg,
		Background: b.bg,
		Turtle:     b.turtle,
		Waiting:    waiting,
	}
}

// Reset restores the initial settings and drops text, input and requests.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Buffer) reset() {
	b.lines = [][]rune{nil}
	b.row, b.col = 0, 0
	b.size = b.settings.TextSize
	b.font = b.settings.Font
	b.fg, b.bg = b.settings.Foreground, b.settings.Background
	b.turtle = Turtle{}
	b.input = nil
	b.wantChar, b.wantLine = false, false
}

// write requires b.mu.
func (b *Buffer) write(text string) {
	for _, r := range text {
		if r == '\n' {
			b.row++
			b.col = 0
			b.grow()
			continue
		}
		b.grow()
		line := b.lines[b.row]
		for int32(len(line)) < b.col {
			line = append(line, ' ')
		}
		if b.col < int32(len(line)) {
			line[b.col] = r
		} else {
			line = append(line, r)
		}
		b.lines[b.row] = line
		b.col++
	}
}

func (b *Buffer) grow() {
	for int32(len(b.lines)) <= b.row {
		b.lines = append(b.lines, nil)
	}
}

// serve answers pending requests from queued input; requires b.mu.
func (b *Buffer) serve() {
	if b.wantChar && len(b.input) > 0 {
		ch := b.input[0]
		b.input = b.input[1:]
		b.wantChar = false
		b.reply(protocol.CharacterResponse{Char: ch})
	}
	if !b.wantLine {
		return
	}
	for i, r := range b.input {
		if r != '\n' {
			continue
		}
		line := strings.TrimSuffix(string(b.input[:i]), "\r")
		b.input = b.input[i+1:]
		b.wantLine = false
		b.write(line + "\n")
		b.reply(protocol.LineResponse{Text: line})
		return
	}
}

func (b *Buffer) reply(p protocol.Payload) {
	if b.replies == nil {
		logs.Warnf("console reply dropped cmd=%s: no reply channel", p.Command())
		return
	}
	msg, err := protocol.Encode(p)
	if err != nil {
		logs.Errf("console reply encode cmd=%s err=%v", p.Command(), err)
		return
	}
	if err := b.replies.Enqueue(msg); err != nil {
		logs.Errf("console reply enqueue cmd=%s err=%v", p.Command(), err)
	}
}
