package riscv

import (
	"encoding/binary"
	"testing"

	"github.com/ayush-os/cpu-sim/log"
)

// testConfig returns a 64 KiB configuration with logging silenced.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MemorySize = 64 << 10
	cfg.Logger = log.Discard()
	return cfg
}

// cpuWithProgram builds a CPU from cfg and loads instrs at address 0.
func cpuWithProgram(t *testing.T, cfg Config, instrs ...uint32) *CPU {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(instrs) > 0 {
		if err := c.Memory().LoadSegment(0, program(instrs...)); err != nil {
			t.Fatalf("LoadSegment: %v", err)
		}
	}
	return c
}

// program encodes instruction words as little-endian bytes.
func program(instrs ...uint32) []byte {
	code := make([]byte, len(instrs)*4)
	for i, w := range instrs {
		binary.LittleEndian.PutUint32(code[i*4:], w)
	}
	return code
}

// Instruction builders.

func rType(funct3, funct7 uint32) func(rd, rs1, rs2 uint32) uint32 {
	return func(rd, rs1, rs2 uint32) uint32 {
		return EncodeRType(opcodeOp, rd, funct3, rs1, rs2, funct7)
	}
}

func iType(opcode, funct3 uint32) func(rd, rs1 uint32, imm int32) uint32 {
	return func(rd, rs1 uint32, imm int32) uint32 {
		return EncodeIType(opcode, rd, funct3, rs1, imm)
	}
}

func sType(funct3 uint32) func(rs1, rs2 uint32, imm int32) uint32 {
	return func(rs1, rs2 uint32, imm int32) uint32 {
		return EncodeSType(opcodeStore, funct3, rs1, rs2, imm)
	}
}

func bType(funct3 uint32) func(rs1, rs2 uint32, imm int32) uint32 {
	return func(rs1, rs2 uint32, imm int32) uint32 {
		return EncodeBType(opcodeBranch, funct3, rs1, rs2, imm)
	}
}

var (
	asmADD  = rType(0, funct7Base)
	asmSUB  = rType(0, funct7Alt)
	asmSLL  = rType(1, funct7Base)
	asmSLT  = rType(2, funct7Base)
	asmSLTU = rType(3, funct7Base)
	asmXOR  = rType(4, funct7Base)
	asmSRL  = rType(5, funct7Base)
	asmSRA  = rType(5, funct7Alt)
	asmOR   = rType(6, funct7Base)
	asmAND  = rType(7, funct7Base)

	asmADDI  = iType(opcodeOpImm, 0)
	asmSLTI  = iType(opcodeOpImm, 2)
	asmSLTIU = iType(opcodeOpImm, 3)
	asmXORI  = iType(opcodeOpImm, 4)
	asmORI   = iType(opcodeOpImm, 6)
	asmANDI  = iType(opcodeOpImm, 7)

	asmLB   = iType(opcodeLoad, 0)
	asmLH   = iType(opcodeLoad, 1)
	asmLW   = iType(opcodeLoad, 2)
	asmLBU  = iType(opcodeLoad, 4)
	asmLHU  = iType(opcodeLoad, 5)
	asmJALR = iType(opcodeJALR, 0)

	asmSB = sType(0)
	asmSH = sType(1)
	asmSW = sType(2)

	asmBEQ  = bType(0)
	asmBNE  = bType(1)
	asmBLT  = bType(4)
	asmBGE  = bType(5)
	asmBLTU = bType(6)
	asmBGEU = bType(7)
)

func asmSLLI(rd, rs1, shamt uint32) uint32 {
	return EncodeIType(opcodeOpImm, rd, 1, rs1, int32(shamt&0x1f))
}

func asmSRLI(rd, rs1, shamt uint32) uint32 {
	return EncodeIType(opcodeOpImm, rd, 5, rs1, int32(shamt&0x1f))
}

func asmSRAI(rd, rs1, shamt uint32) uint32 {
	return EncodeIType(opcodeOpImm, rd, 5, rs1, int32(funct7Alt<<5|shamt&0x1f))
}

func asmLUI(rd, imm uint32) uint32   { return EncodeUType(opcodeLUI, rd, imm) }
func asmAUIPC(rd, imm uint32) uint32 { return EncodeUType(opcodeAUIPC, rd, imm) }
func asmJAL(rd uint32, imm int32) uint32 {
	return EncodeJType(opcodeJAL, rd, imm)
}

const (
	asmECALL  uint32 = 0x00000073
	asmEBREAK uint32 = 0x00100073
	asmFENCE  uint32 = 0x0ff0000f
)
