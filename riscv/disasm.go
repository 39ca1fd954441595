package riscv

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// String renders the instruction in assembler syntax with ABI register
// names, e.g. "addi a0, zero, 5" or "lw ra, 8(sp)".
func (in Instr) String() string {
	rd, rs1, rs2 := RegNames[in.Rd&0x1f], RegNames[in.Rs1&0x1f], RegNames[in.Rs2&0x1f]
	switch in.Format {
	case FormatR:
		return fmt.Sprintf("%s %s, %s, %s", in.Op, rd, rs1, rs2)
	case FormatI:
		imm := in.Imm
		switch in.Op {
		case OpSLLI, OpSRLI, OpSRAI:
			imm &= 0x1f
		}
		return fmt.Sprintf("%s %s, %s, %d", in.Op, rd, rs1, imm)
	case FormatILoad, FormatIJump:
		return fmt.Sprintf("%s %s, %d(%s)", in.Op, rd, in.Imm, rs1)
	case FormatS:
		return fmt.Sprintf("%s %s, %d(%s)", in.Op, rs2, in.Imm, rs1)
	case FormatB:
		return fmt.Sprintf("%s %s, %s, %d", in.Op, rs1, rs2, in.Imm)
	case FormatULUI, FormatUAUIPC:
		return fmt.Sprintf("%s %s, %#x", in.Op, rd, uint32(in.Imm)>>12)
	case FormatJ:
		return fmt.Sprintf("%s %s, %d", in.Op, rd, in.Imm)
	}
	// fence, ecall, ebreak and the zero Instr.
	return in.Op.String()
}

// Disassemble decodes code as a sequence of little-endian instruction
// words loaded at base and returns one line per word. Words that do not
// decode are shown as data.
func Disassemble(code []byte, base uint32) []string {
	lines := make([]string, 0, len(code)/4+1)
	addr := base
	for len(code) >= 4 {
		w := binary.LittleEndian.Uint32(code)
		var text string
		if in, err := Decode(w); err != nil {
			text = fmt.Sprintf(".word 0x%08x  # illegal", w)
		} else {
			text = in.String()
		}
		lines = append(lines, fmt.Sprintf("%08x: %08x  %s", addr, w, text))
		code = code[4:]
		addr += 4
	}
	if len(code) > 0 {
		parts := make([]string, len(code))
		for i, b := range code {
			parts[i] = fmt.Sprintf("0x%02x", b)
		}
		lines = append(lines, fmt.Sprintf("%08x: %-8s  .byte %s", addr, "", strings.Join(parts, ", ")))
	}
	return lines
}
