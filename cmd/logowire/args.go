package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danmuck/logowire/internal/protocol"
)

// resolveCommand accepts a registry name, its short form without the
// "console." or "canvas." prefix, or a numeric identifier.
func resolveCommand(name string) (protocol.Spec, error) {
	name = strings.TrimSpace(name)
	for _, candidate := range []string{name, "console." + name, "canvas." + name} {
		if spec, ok := protocol.LookupName(candidate); ok {
			return spec, nil
		}
	}
	if id, err := strconv.ParseUint(name, 10, 8); err == nil {
		if spec, ok := protocol.Lookup(protocol.Command(id)); ok {
			return spec, nil
		}
	}
	return protocol.Spec{}, fmt.Errorf("%w: %q", protocol.ErrUnknownCommand, name)
}

// parsePayload builds the typed record for spec from one argument per field.
func parsePayload(spec protocol.Spec, args []string) (protocol.Payload, error) {
	if len(args) != len(spec.Fields) {
		names := make([]string, len(spec.Fields))
		for i, f := range spec.Fields {
			names[i] = f.Name
		}
		return nil, fmt.Errorf("%s takes %d argument(s) [%s], got %d", spec.Name, len(spec.Fields), strings.Join(names, " "), len(args))
	}
	p := argParser{spec: spec, args: args}
	var out protocol.Payload
	switch spec.Command {
	case protocol.CmdConsolePrintString:
		out = protocol.PrintString{Text: args[0]}
	case protocol.CmdConsoleSetTextSize:
		out = protocol.SetTextSize{Size: p.float(0)}
	case protocol.CmdConsoleSetCursorPos:
		out = protocol.SetCursorPos{Row: p.int32(0), Column: p.int32(1)}
	case protocol.CmdConsoleSetTextColor:
		out = protocol.SetTextColor{Foreground: p.color(0), Background: p.color(1)}
	case protocol.CmdConsoleClearText:
		out = protocol.ClearText{}
	case protocol.CmdConsoleSetFont:
		out = protocol.SetFont{Name: args[0]}
	case protocol.CmdConsoleRequestCharacter:
		out = protocol.RequestCharacter{}
	case protocol.CmdConsoleRequestLine:
		out = protocol.RequestLine{Prompt: args[0]}
	case protocol.CmdConsoleRequestCursorPos:
		out = protocol.RequestCursorPos{}
	case protocol.CmdCanvasSetTurtlePos:
		out = protocol.SetTurtlePos{X: p.float(0), Y: p.float(1), Heading: p.float(2)}
	case protocol.CmdConsoleCharacterResponse:
		out = protocol.CharacterResponse{Char: p.char(0)}
	case protocol.CmdConsoleLineResponse:
		out = protocol.LineResponse{Text: args[0]}
	case protocol.CmdConsoleCursorPosResponse:
		out = protocol.CursorPosResponse{Row: p.int32(0), Column: p.int32(1)}
	default:
		return nil, fmt.Errorf("%w: %s", protocol.ErrUnknownCommand, spec.Name)
	}
	if p.err != nil {
		return nil, p.err
	}
	return out, nil
}

// argParser keeps the first conversion error.
type argParser struct {
	spec protocol.Spec
	args []string
	err  error
}

func (p *argParser) fail(i int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s %s: %w", p.spec.Name, p.spec.Fields[i].Name, err)
	}
}

func (p *argParser) float(i int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.args[i]), 64)
	if err != nil {
		p.fail(i, err)
	}
	return v
}

func (p *argParser) int32(i int) int32 {
	v, err := strconv.ParseInt(strings.TrimSpace(p.args[i]), 10, 32)
	if err != nil {
		p.fail(i, err)
	}
	return int32(v)
}

func (p *argParser) color(i int) protocol.Color {
	c, err := parseColor(p.args[i])
	if err != nil {
		p.fail(i, err)
	}
	return c
}

func (p *argParser) char(i int) rune {
	s := p.args[i]
	if utf8.RuneCountInString(s) != 1 {
		p.fail(i, fmt.Errorf("want exactly one character, got %q", s))
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
