package protocol

import (
	"fmt"
	"unicode/utf8"
)

// Encode serializes any typed payload record.
func Encode(p Payload) (Message, error) {
	switch v := p.(type) {
	case PrintString:
		return EncodePrintString(v.Text)
	case SetTextSize:
		return EncodeSetTextSize(v.Size)
	case SetCursorPos:
		return EncodeSetCursorPos(v.Row, v.Column)
	case SetTextColor:
		return EncodeSetTextColor(v.Foreground, v.Background)
	case ClearText:
		return EncodeClearText()
	case SetFont:
		return EncodeSetFont(v.Name)
	case RequestCharacter:
		return EncodeRequestCharacter()
	case RequestLine:
		return EncodeRequestLine(v.Prompt)
	case RequestCursorPos:
		return EncodeRequestCursorPos()
	case SetTurtlePos:
		return EncodeSetTurtlePos(v.X, v.Y, v.Heading)
	case CharacterResponse:
		return EncodeCharacterResponse(v.Char)
	case LineResponse:
		return EncodeLineResponse(v.Text)
	case CursorPosResponse:
		return EncodeCursorPosResponse(v.Row, v.Column)
	case nil:
		return nil, fmt.Errorf("%w: nil payload", ErrInvalidArgument)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, p)
	}
}

// EncodePrintString builds a console.print_string message.
//
// Layout: [id][uint32 units][units x uint16], big-endian.
func EncodePrintString(text string) (Message, error) {
	w := newWriter(CmdConsolePrintString, textHint(text))
	w.putText("text", text)
	return w.message()
}

// EncodeSetTextSize builds a console.set_text_size message.
func EncodeSetTextSize(size float64) (Message, error) {
	w := newWriter(CmdConsoleSetTextSize, 8)
	w.putFloat64(size)
	return w.message()
}

// EncodeSetCursorPos builds a console.set_cursor_pos message. Coordinates
// are zero-based and must not be negative.
func EncodeSetCursorPos(row, column int32) (Message, error) {
	w := newWriter(CmdConsoleSetCursorPos, 8)
	w.putCoord("row", row)
	w.putCoord("column", column)
	return w.message()
}

func EncodeSetTextColor(foreground, background Color) (Message, error) {
	w := newWriter(CmdConsoleSetTextColor, 2*colorSize)
	w.putColor(foreground)
	w.putColor(background)
	return w.message()
}

// EncodeClearText builds the one-byte console.clear_text message.
func EncodeClearText() (Message, error) {
	return newWriter(CmdConsoleClearText, 0).message()
}

func EncodeSetFont(name string) (Message, error) {
	w := newWriter(CmdConsoleSetFont, textHint(name))
	w.putText("name", name)
	return w.message()
}

func EncodeRequestCharacter() (Message, error) {
	return newWriter(CmdConsoleRequestCharacter, 0).message()
}

func EncodeRequestLine(prompt string) (Message, error) {
	w := newWriter(CmdConsoleRequestLine, textHint(prompt))
	w.putText("prompt", prompt)
	return w.message()
}

func EncodeRequestCursorPos() (Message, error) {
	return newWriter(CmdConsoleRequestCursorPos, 0).message()
}

func EncodeSetTurtlePos(x, y, heading float64) (Message, error) {
	w := newWriter(CmdCanvasSetTurtlePos, 24)
	w.putFloat64(x)
	w.putFloat64(y)
	w.putFloat64(heading)
	return w.message()
}

// EncodeCharacterResponse builds a console.character_response message. The
// character travels as a one-character text field.
func EncodeCharacterResponse(ch rune) (Message, error) {
	if !utf8.ValidRune(ch) {
		return nil, fmt.Errorf("%w: command=%s invalid rune %U", ErrInvalidArgument, CmdConsoleCharacterResponse, ch)
	}
	w := newWriter(CmdConsoleCharacterResponse, textPrefixSize+2*textUnitSize)
	w.putText("char", string(ch))
	return w.message()
}

func EncodeLineResponse(text string) (Message, error) {
	w := newWriter(CmdConsoleLineResponse, textHint(text))
	w.putText("text", text)
	return w.message()
}

func EncodeCursorPosResponse(row, column int32) (Message, error) {
	w := newWriter(CmdConsoleCursorPosResponse, 8)
	w.putCoord("row", row)
	w.putCoord("column", column)
	return w.message()
}

func textHint(s string) int {
	return textPrefixSize + min(len(s), MaxTextUnits)*textUnitSize
}
