package protocol

// Message is one encoded command: identifier byte followed by payload.
type Message []byte

// Command returns the identifier byte. ok is false for an empty message.
func (m Message) Command() (Command, bool) {
	if len(m) == 0 {
		return 0, false
	}
	return Command(m[0]), true
}

// Payload returns the bytes after the identifier.
func (m Message) Payload() []byte {
	if len(m) == 0 {
		return nil
	}
	return m[1:]
}

// Payload is the typed record carried by one command kind.
type Payload interface {
	Command() Command
}

// Color is one RGBA color record, one byte per channel.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

type PrintString struct {
	Text string
}

type SetTextSize struct {
	Size float64
}

type SetCursorPos struct {
	Row    int32
	Column int32
}

type SetTextColor struct {
	Foreground Color
	Background Color
}

type ClearText struct{}

type SetFont struct {
	Name string
}

type RequestCharacter struct{}

// RequestLine asks the frontend for one line of input. Prompt may be empty.
type RequestLine struct {
	Prompt string
}

type RequestCursorPos struct{}

// SetTurtlePos places the canvas turtle. Heading is in degrees.
type SetTurtlePos struct {
	X       float64
	Y       float64
	Heading float64
}

type CharacterResponse struct {
	Char rune
}

type LineResponse struct {
	Text string
}

type CursorPosResponse struct {
	Row    int32
	Column int32
}

func (PrintString) Command() Command { return CmdConsolePrintString }
func (SetTextSize) Command() Command { return CmdConsoleSetTextSize }
func (SetCursorPos) Command() Command { return CmdConsoleSetCursorPos }
func (SetTextColor) Command() Command { return CmdConsoleSetTextColor }
func (ClearText) Command() Command { return CmdConsoleClearText }
func (SetFont) Command() Command { return CmdConsoleSetFont }
func (RequestCharacter) Command() Command { return CmdConsoleRequestCharacter }
func (RequestLine) Command() Command { return CmdConsoleRequestLine }
func (RequestCursorPos) Command() Command { return CmdConsoleRequestCursorPos }
func (SetTurtlePos) Command() Command { return CmdCanvasSetTurtlePos }
func (CharacterResponse) Command() Command { return CmdConsoleCharacterResponse }
func (LineResponse) Command() Command { return CmdConsoleLineResponse }
func (CursorPosResponse) Command() Command { return CmdConsoleCursorPosResponse }
