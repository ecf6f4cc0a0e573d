package protocol

import "fmt"

// Command is the one-byte identifier leading every message.
//
// Values are wire contract: new commands are appended, existing values are
// never renumbered.
type Command uint8

const (
	CmdConsolePrintString Command = iota
	CmdConsoleSetTextSize
	CmdConsoleSetCursorPos
	CmdConsoleSetTextColor
	CmdConsoleClearText
	CmdConsoleSetFont
	CmdConsoleRequestCharacter
	CmdConsoleRequestLine
	CmdConsoleRequestCursorPos
	CmdCanvasSetTurtlePos
	CmdConsoleCharacterResponse
	CmdConsoleLineResponse
	CmdConsoleCursorPosResponse

	commandCount
)

// Direction is the side a command travels towards.
type Direction uint8

const (
	ToFrontend Direction = iota + 1
	ToKernel
)

func (d Direction) String() string {
	switch d {
	case ToFrontend:
		return "frontend"
	case ToKernel:
		return "kernel"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// FieldKind is the primitive encoding of one payload field.
type FieldKind uint8

const (
	KindText FieldKind = iota + 1
	KindFloat64
	KindInt32
	KindColor
)

// Size returns the fixed wire width of the kind. For text this is the width
// of the length prefix alone.
func (k FieldKind) Size() int {
	switch k {
	case KindText:
		return textPrefixSize
	case KindFloat64:
		return 8
	case KindInt32:
		return 4
	case KindColor:
		return colorSize
	default:
		return 0
	}
}

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFloat64:
		return "float64"
	case KindInt32:
		return "int32"
	case KindColor:
		return "color"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// FieldSpec declares one field of a payload shape, in wire order.
type FieldSpec struct {
	Name string
	Kind FieldKind
}

// Spec is the registry entry for one command.
type Spec struct {
	Command   Command
	Name      string
	Direction Direction
	Fields    []FieldSpec
}

// MinPayloadLen is the smallest payload (excluding the identifier byte) that
// can satisfy the shape.
func (s Spec) MinPayloadLen() int {
	n := 0
	for _, f := range s.Fields {
		n += f.Kind.Size()
	}
	return n
}

// Fixed reports whether every field has a fixed width.
func (s Spec) Fixed() bool {
	for _, f := range s.Fields {
		if f.Kind == KindText {
			return false
		}
	}
	return true
}

var registry = [commandCount]Spec{
	CmdConsolePrintString: {
		Name:      "console.print_string",
		Direction: ToFrontend,
		Fields:    []FieldSpec{{"text", KindText}},
	},
	CmdConsoleSetTextSize: {
		Name:      "console.set_text_size",
		Direction: ToFrontend,
		Fields:    []FieldSpec{{"size", KindFloat64}},
	},
	CmdConsoleSetCursorPos: {
		Name:      "console.set_cursor_pos",
		Direction: ToFrontend,
		Fields:    []FieldSpec{{"row", KindInt32}, {"column", KindInt32}},
	},
	CmdConsoleSetTextColor: {
		Name:      "console.set_text_color",
		Direction: ToFrontend,
		Fields:    []FieldSpec{{"foreground", KindColor}, {"background", KindColor}},
	},
	CmdConsoleClearText: {
		Name:      "console.clear_text",
		Direction: ToFrontend,
	},
	CmdConsoleSetFont: {
		Name:      "console.set_font",
		Direction: ToFrontend,
		Fields:    []FieldSpec{{"name", KindText}},
	},
	CmdConsoleRequestCharacter: {
		Name:      "console.request_character",
		Direction: ToFrontend,
	},
	CmdConsoleRequestLine: {
		Name:      "console.request_line",
		Direction: ToFrontend,
		Fields:    []FieldSpec{{"prompt", KindText}},
	},
	CmdConsoleRequestCursorPos: {
		Name:      "console.request_cursor_pos",
		Direction: ToFrontend,
	},
	CmdCanvasSetTurtlePos: {
		Name:      "canvas.set_turtle_pos",
		Direction: ToFrontend,
		Fields:    []FieldSpec{{"x", KindFloat64}, {"y", KindFloat64}, {"heading", KindFloat64}},
	},
	CmdConsoleCharacterResponse: {
		Name:      "console.character_response",
		Direction: ToKernel,
		Fields:    []FieldSpec{{"char", KindText}},
	},
	CmdConsoleLineResponse: {
		Name:      "console.line_response",
		Direction: ToKernel,
		Fields:    []FieldSpec{{"text", KindText}},
	},
	CmdConsoleCursorPosResponse: {
		Name:      "console.cursor_pos_response",
		Direction: ToKernel,
		Fields:    []FieldSpec{{"row", KindInt32}, {"column", KindInt32}},
	},
}

func init() {
	for i := range registry {
		registry[i].Command = Command(i)
	}
}

// Known reports whether c is in the registry.
func (c Command) Known() bool {
	return c < commandCount
}

func (c Command) String() string {
	if !c.Known() {
		return fmt.Sprintf("command(%d)", uint8(c))
	}
	return registry[c].Name
}

// Lookup returns the registry entry for c.
func Lookup(c Command) (Spec, bool) {
	if !c.Known() {
		return Spec{}, false
	}
	return registry[c], true
}

// LookupName resolves a command by its registry name.
func LookupName(name string) (Spec, bool) {
	for _, spec := range registry {
		if spec.Name == name {
			return spec, true
		}
	}
	return Spec{}, false
}

// Specs returns every registry entry in identifier order.
func Specs() []Spec {
	out := make([]Spec, len(registry))
	copy(out, registry[:])
	return out
}
