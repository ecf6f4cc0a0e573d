package dispatch

import (
	"fmt"

	"github.com/danmuck/logowire/internal/protocol"
)

// recorder captures every handler call as a formatted line.
type recorder struct {
	calls  []string
	during func()
}

func (r *recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	if r.during != nil {
		r.during()
	}
}

func (r *recorder) PrintString(text string) { r.record("print_string %q", text) }
func (r *recorder) SetTextSize(size float64) { r.record("set_text_size %v", size) }
func (r *recorder) SetCursorPos(row, col int32) { r.record("set_cursor_pos %d %d", row, col) }
func (r *recorder) ClearText() { r.record("clear_text") }
func (r *recorder) SetFont(name string) { r.record("set_font %q", name) }
func (r *recorder) RequestCharacter() { r.record("request_character") }
func (r *recorder) RequestLine(prompt string) { r.record("request_line %q", prompt) }
func (r *recorder) RequestCursorPos() { r.record("request_cursor_pos") }
func (r *recorder) SetTurtlePos(x, y, h float64) { r.record("set_turtle_pos %v %v %v", x, y, h) }
func (r *recorder) CharacterResponse(ch rune) { r.record("character_response %q", ch) }
func (r *recorder) LineResponse(text string) { r.record("line_response %q", text) }
func (r *recorder) CursorPosResponse(row, col int32) {
	r.record("cursor_pos_response %d %d", row, col)
}

func (r *recorder) SetTextColor(fg, bg protocol.Color) {
	r.record("set_text_color %v %v", fg, bg)
}
