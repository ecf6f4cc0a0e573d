package dispatch

import "github.com/danmuck/logowire/internal/protocol"

// Frontend is the presentation surface driven by kernel commands. Methods
// run on the dispatching goroutine and must not block.
type Frontend interface {
	PrintString(text string)
	SetTextSize(size float64)
	SetCursorPos(row, column int32)
	SetTextColor(foreground, background protocol.Color)
	ClearText()
	SetFont(name string)
	RequestCharacter()
	RequestLine(prompt string)
	RequestCursorPos()
	SetTurtlePos(x, y, heading float64)
}

// Kernel receives the frontend's answers to console requests.
type Kernel interface {
	CharacterResponse(ch rune)
	LineResponse(text string)
	CursorPosResponse(row, column int32)
}

// NewFrontend builds the kernel -> frontend routing table around h.
func NewFrontend(h Frontend) (*Dispatcher, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	return newDispatcher(SideFrontend, map[protocol.Command]route{
		protocol.CmdConsolePrintString: bind(protocol.DecodePrintString, func(p protocol.PrintString) {
			h.PrintString(p.Text)
		}),
		protocol.CmdConsoleSetTextSize: bind(protocol.DecodeSetTextSize, func(p protocol.SetTextSize) {
			h.SetTextSize(p.Size)
		}),
		protocol.CmdConsoleSetCursorPos: bind(protocol.DecodeSetCursorPos, func(p protocol.SetCursorPos) {
			h.SetCursorPos(p.Row, p.Column)
		}),
		protocol.CmdConsoleSetTextColor: bind(protocol.DecodeSetTextColor, func(p protocol.SetTextColor) {
			h.SetTextColor(p.Foreground, p.Background)
		}),
		protocol.CmdConsoleClearText: bind(protocol.DecodeClearText, func(protocol.ClearText) {
			h.ClearText()
		}),
		protocol.CmdConsoleSetFont: bind(protocol.DecodeSetFont, func(p protocol.SetFont) {
			h.SetFont(p.Name)
		}),
		protocol.CmdConsoleRequestCharacter: bind(protocol.DecodeRequestCharacter, func(protocol.RequestCharacter) {
			h.RequestCharacter()
		}),
		protocol.CmdConsoleRequestLine: bind(protocol.DecodeRequestLine, func(p protocol.RequestLine) {
			h.RequestLine(p.Prompt)
		}),
		protocol.CmdConsoleRequestCursorPos: bind(protocol.DecodeRequestCursorPos, func(protocol.RequestCursorPos) {
			h.RequestCursorPos()
		}),
		protocol.CmdCanvasSetTurtlePos: bind(protocol.DecodeSetTurtlePos, func(p protocol.SetTurtlePos) {
			h.SetTurtlePos(p.X, p.Y, p.Heading)
		}),
	}), nil
}

// NewKernel builds the frontend -> kernel routing table around h.
func NewKernel(h Kernel) (*Dispatcher, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	return newDispatcher(SideKernel, map[protocol.Command]route{
		protocol.CmdConsoleCharacterResponse: bind(protocol.DecodeCharacterResponse, func(p protocol.CharacterResponse) {
			h.CharacterResponse(p.Char)
		}),
		protocol.CmdConsoleLineResponse: bind(protocol.DecodeLineResponse, func(p protocol.LineResponse) {
			h.LineResponse(p.Text)
		}),
		protocol.CmdConsoleCursorPosResponse: bind(protocol.DecodeCursorPosResponse, func(p protocol.CursorPosResponse) {
			h.CursorPosResponse(p.Row, p.Column)
		}),
	}), nil
}
