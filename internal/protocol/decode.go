package protocol

import (
	"fmt"
	"unicode/utf8"
)

// Decode validates msg against its command's shape and returns the typed
// record. Unregistered identifiers yield ErrUnknownCommand.
func Decode(msg Message) (Payload, error) {
	cmd, ok := msg.Command()
	if !ok {
		return nil, ErrEmptyMessage
	}
	switch cmd {
	case CmdConsolePrintString:
		return DecodePrintString(msg)
	case CmdConsoleSetTextSize:
		return DecodeSetTextSize(msg)
	case CmdConsoleSetCursorPos:
		return DecodeSetCursorPos(msg)
	case CmdConsoleSetTextColor:
		return DecodeSetTextColor(msg)
	case CmdConsoleClearText:
		return DecodeClearText(msg)
	case CmdConsoleSetFont:
		return DecodeSetFont(msg)
	case CmdConsoleRequestCharacter:
		return DecodeRequestCharacter(msg)
	case CmdConsoleRequestLine:
		return DecodeRequestLine(msg)
	case CmdConsoleRequestCursorPos:
		return DecodeRequestCursorPos(msg)
	case CmdCanvasSetTurtlePos:
		return DecodeSetTurtlePos(msg)
	case CmdConsoleCharacterResponse:
		return DecodeCharacterResponse(msg)
	case CmdConsoleLineResponse:
		return DecodeLineResponse(msg)
	case CmdConsoleCursorPosResponse:
		return DecodeCursorPosResponse(msg)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, uint8(cmd))
	}
}

// open checks the identifier byte and returns a reader over the payload.
func open(msg Message, want Command) (*reader, error) {
	cmd, ok := msg.Command()
	if !ok {
		return nil, ErrEmptyMessage
	}
	if cmd != want {
		return nil, fmt.Errorf("%w: got=%s want=%s", ErrCommandMismatch, cmd, want)
	}
	return newReader(cmd, msg.Payload()), nil
}

func DecodePrintString(msg Message) (PrintString, error) {
	r, err := open(msg, CmdConsolePrintString)
	if err != nil {
		return PrintString{}, err
	}
	out := PrintString{Text: r.text("text")}
	if err := r.finish(); err != nil {
		return PrintString{}, err
	}
	return out, nil
}

func DecodeSetTextSize(msg Message) (SetTextSize, error) {
	r, err := open(msg, CmdConsoleSetTextSize)
	if err != nil {
		return SetTextSize{}, err
	}
	out := SetTextSize{Size: r.float64("size")}
	if err := r.finish(); err != nil {
		return SetTextSize{}, err
	}
	return out, nil
}

func DecodeSetCursorPos(msg Message) (SetCursorPos, error) {
	r, err := open(msg, CmdConsoleSetCursorPos)
	if err != nil {
		return SetCursorPos{}, err
	}
	out := SetCursorPos{Row: r.coord("row"), Column: r.coord("column")}
	if err := r.finish(); err != nil {
		return SetCursorPos{}, err
	}
	return out, nil
}

func DecodeSetTextColor(msg Message) (SetTextColor, error) {
	r, err := open(msg, CmdConsoleSetTextColor)
	if err != nil {
		return SetTextColor{}, err
	}
	out := SetTextColor{Foreground: r.color("foreground"), Background: r.color("background")}
	if err := r.finish(); err != nil {
		return SetTextColor{}, err
	}
	return out, nil
}

func DecodeClearText(msg Message) (ClearText, error) {
	r, err := open(msg, CmdConsoleClearText)
	if err != nil {
		return ClearText{}, err
	}
	return ClearText{}, r.finish()
}

func DecodeSetFont(msg Message) (SetFont, error) {
	r, err := open(msg, CmdConsoleSetFont)
	if err != nil {
		return SetFont{}, err
	}
	out := SetFont{Name: r.text("name")}
	if err := r.finish(); err != nil {
		return SetFont{}, err
	}
	return out, nil
}

func DecodeRequestCharacter(msg Message) (RequestCharacter, error) {
	r, err := open(msg, CmdConsoleRequestCharacter)
	if err != nil {
		return RequestCharacter{}, err
	}
	return RequestCharacter{}, r.finish()
}

func DecodeRequestLine(msg Message) (RequestLine, error) {
	r, err := open(msg, CmdConsoleRequestLine)
	if err != nil {
		return RequestLine{}, err
	}
	out := RequestLine{Prompt: r.text("prompt")}
	if err := r.finish(); err != nil {
		return RequestLine{}, err
	}
	return out, nil
}

func DecodeRequestCursorPos(msg Message) (RequestCursorPos, error) {
	r, err := open(msg, CmdConsoleRequestCursorPos)
	if err != nil {
		return RequestCursorPos{}, err
	}
	return RequestCursorPos{}, r.finish()
}

func DecodeSetTurtlePos(msg Message) (SetTurtlePos, error) {
	r, err := open(msg, CmdCanvasSetTurtlePos)
	if err != nil {
		return SetTurtlePos{}, err
	}
	out := SetTurtlePos{X: r.float64("x"), Y: r.float64("y"), Heading: r.float64("heading")}
	if err := r.finish(); err != nil {
		return SetTurtlePos{}, err
	}
	return out, nil
}

func DecodeCharacterResponse(msg Message) (CharacterResponse, error) {
	r, err := open(msg, CmdConsoleCharacterResponse)
	if err != nil {
		return CharacterResponse{}, err
	}
	at := r.off
	s := r.text("char")
	if r.err == nil && utf8.RuneCountInString(s) != 1 {
		r.off = at
		r.fail("char", ErrInvalidValue)
	}
	if err := r.finish(); err != nil {
		return CharacterResponse{}, err
	}
	ch, _ := utf8.DecodeRuneInString(s)
	return CharacterResponse{Char: ch}, nil
}

func DecodeLineResponse(msg Message) (LineResponse, error) {
	r, err := open(msg, CmdConsoleLineResponse)
	if err != nil {
		return LineResponse{}, err
	}
	out := LineResponse{Text: r.text("text")}
	if err := r.finish(); err != nil {
		return LineResponse{}, err
	}
	return out, nil
}

func DecodeCursorPosResponse(msg Message) (CursorPosResponse, error) {
	r, err := open(msg, CmdConsoleCursorPosResponse)
	if err != nil {
		return CursorPosResponse{}, err
	}
	out := CursorPosResponse{Row: r.coord("row"), Column: r.coord("column")}
	if err := r.finish(); err != nil {
		return CursorPosResponse{}, err
	}
	return out, nil
}
