package vm

import (
	"strconv"
	"strings"

	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/variant"
)

// ioOp dispatches OpIoOp by its named sub-operation — PRINT and INPUT
// each lower to a short sequence of these rather than one opcode, so
// per-item separators and file-channel redirection compose without the
// generator needing to special-case every combination.
func (vm *VM) ioOp(instr bytecode.Instruction) *RuntimeError {
	switch instr.Name {
	case "PRINT_CHANNEL":
		n, err := vm.popChannelNum()
		if err != nil {
			return err
		}
		vm.printChannel = n
	case "PRINT_USING":
		vm.printFormat = vm.pop().String()
	case "PRINT_ITEM":
		return vm.printItem(instr.Flags)
	case "PRINT_END":
		return vm.printEnd(instr.Flags)

	case "INPUT_CHANNEL":
		n, err := vm.popChannelNum()
		if err != nil {
			return err
		}
		vm.inputChannel = n
	case "INPUT_PROMPT":
		vm.inputPrompt = vm.pop().String()
	case "INPUT_LINE":
		return vm.readInputLine(instr)
	case "INPUT_FIELD":
		return vm.readInputField(instr)

	default:
		return rerrf(5, "unsupported I/O operation %q", instr.Name)
	}
	return nil
}

func (vm *VM) popChannelNum() (int, *RuntimeError) {
	n, ok := toIndex(vm.pop())
	if !ok {
		return 0, rerrf(13, "file channel number must be numeric")
	}
	return n, nil
}

func (vm *VM) printItem(flags int) *RuntimeError {
	v := vm.pop()
	text := vm.renderValue(v)
	if err := vm.writeOut(text); err != nil {
		return err
	}
	switch flags {
	case 1: // ';' — pack tight, no padding
	case 2: // ',' — advance to the next 14-column print zone
		if vm.printChannel == 0 {
			vm.console.NextZone()
		}
	}
	return nil
}

func (vm *VM) printEnd(flags int) *RuntimeError {
	sep := flags >> 1
	lprint := flags&1 != 0
	_ = lprint // LPRINT targets the printer device; routed through the same writer here since no physical printer exists.
	if vm.printChannel == 0 {
		switch sep {
		case 0:
			vm.console.Newline()
		case 2:
			// ',' — the last PRINT_ITEM has already advanced to the next zone.
		}
	} else if sep == 0 {
		if err := vm.writeOut("\r\n"); err != nil {
			return err
		}
	}
	vm.printChannel = 0
	vm.printFormat = ""
	return nil
}

func (vm *VM) writeOut(s string) *RuntimeError {
	if vm.printChannel == 0 {
		vm.console.Print(s)
		return nil
	}
	h, err := vm.files.Get(vm.printChannel)
	if err != nil {
		return wrapVariantErr(err)
	}
	if _, werr := h.File.WriteString(s); werr != nil {
		return rerrf(5, "write #%d: %v", vm.printChannel, werr)
	}
	return nil
}

// renderValue applies PRINT USING's format string when one is active,
// covering the common "#" digit-placeholder and "\  \" string-template
// forms; otherwise it's just the value's own String().
func (vm *VM) renderValue(v variant.Value) string {
	if vm.printFormat == "" {
		return v.String()
	}
	return formatUsing(vm.printFormat, v)
}

func formatUsing(format string, v variant.Value) string {
	if strings.ContainsAny(format, "#") {
		width := strings.Count(format, "#")
		decimals := 0
		if i := strings.IndexByte(format, '.'); i >= 0 {
			decimals = strings.Count(format[i+1:], "#")
			width -= decimals + 1
		}
		f, _ := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		s := strconv.FormatFloat(f, 'f', decimals, 64)
		for len(s) < width+decimals+boolWidth(decimals > 0) {
			s = " " + s
		}
		return s
	}
	if strings.HasPrefix(format, "\\") && strings.HasSuffix(format, "\\") {
		width := len(format) - 1
		s := v.String()
		if len(s) > width {
			return s[:width]
		}
		return s + strings.Repeat(" ", width-len(s))
	}
	if format == "!" {
		s := v.String()
		if len(s) > 0 {
			return s[:1]
		}
		return ""
	}
	return v.String()
}

func boolWidth(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (vm *VM) readInputLine(instr bytecode.Instruction) *RuntimeError {
	lineInput := instr.Flags&2 != 0
	suppress := instr.Flags&1 != 0

	line, err := vm.readLine(suppress)
	if err != nil {
		return err
	}

	if lineInput {
		vm.pendingInput = []string{line}
	} else {
		parts := strings.Split(line, ",")
		tokens := make([]string, instr.Slot)
		for i := range tokens {
			if i < len(parts) {
				tokens[i] = strings.TrimSpace(parts[i])
			}
		}
		vm.pendingInput = tokens
	}
	vm.pendingCursor = 0
	vm.inputChannel = 0
	vm.inputPrompt = ""
	return nil
}

// readLine reads one line of console input, or one line from the
// redirected channel when INPUT #n is in effect. suppress is the
// semicolon form's INPUT ...; flag, which drops the trailing "? " but
// still shows any explicit prompt string.
func (vm *VM) readLine(suppress bool) (string, *RuntimeError) {
	if vm.inputChannel != 0 {
		h, err := vm.files.Get(vm.inputChannel)
		if err != nil {
			return "", wrapVariantErr(err)
		}
		var sb strings.Builder
		buf := make([]byte, 1)
		for {
			n, rerr := h.File.Read(buf)
			if n == 0 || rerr != nil {
				break
			}
			if buf[0] == '\n' {
				break
			}
			if buf[0] != '\r' {
				sb.WriteByte(buf[0])
			}
		}
		return sb.String(), nil
	}
	if vm.inputPrompt != "" {
		vm.console.Print(vm.inputPrompt)
	}
	if !suppress {
		vm.console.Print("? ")
	}
	vm.console.Flush()
	line, _ := vm.stdin.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), nil
}

func (vm *VM) readInputField(instr bytecode.Instruction) *RuntimeError {
	var token string
	if vm.pendingCursor < len(vm.pendingInput) {
		token = vm.pendingInput[vm.pendingCursor]
	}
	vm.pendingCursor++
	v, err := parseInputToken(token, variant.Kind(instr.Slot))
	if err != nil {
		return err
	}
	vm.push(v)
	return nil
}

func parseInputToken(token string, kind variant.Kind) (variant.Value, *RuntimeError) {
	token = strings.TrimSpace(token)
	if kind == variant.KindString {
		return variant.NewString(token), nil
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		f = 0
	}
	fitted := variant.FitFloat64(f)
	result, castErr := variant.Cast(fitted, kind)
	if castErr != nil {
		return nil, wrapVariantErr(castErr)
	}
	return result, nil
}
