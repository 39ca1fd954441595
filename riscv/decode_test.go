package riscv

import (
	"errors"
	"testing"
)

func TestDecode_AddiExample(t *testing.T) {
	in, err := Decode(0x00500093)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Op != OpADDI || in.Format != FormatI {
		t.Fatalf("op/format = %v/%v, want addi/I", in.Op, in.Format)
	}
	if in.Rd != 1 || in.Rs1 != 0 || in.Imm != 5 {
		t.Fatalf("rd=%d rs1=%d imm=%d, want 1 0 5", in.Rd, in.Rs1, in.Imm)
	}
}

func TestDecode_AllOps(t *testing.T) {
	tests := []struct {
		word   uint32
		op     Op
		format Format
	}{
		{asmLUI(1, 0x12345000), OpLUI, FormatULUI},
		{asmAUIPC(1, 0x1000), OpAUIPC, FormatUAUIPC},
		{asmJAL(1, 8), OpJAL, FormatJ},
		{asmJALR(1, 2, 0), OpJALR, FormatIJump},
		{asmBEQ(1, 2, 8), OpBEQ, FormatB},
		{asmBNE(1, 2, 8), OpBNE, FormatB},
		{asmBLT(1, 2, 8), OpBLT, FormatB},
		{asmBGE(1, 2, 8), OpBGE, FormatB},
		{asmBLTU(1, 2, 8), OpBLTU, FormatB},
		{asmBGEU(1, 2, 8), OpBGEU, FormatB},
		{asmLB(1, 2, 0), OpLB, FormatILoad},
		{asmLH(1, 2, 0), OpLH, FormatILoad},
		{asmLW(1, 2, 0), OpLW, FormatILoad},
		{asmLBU(1, 2, 0), OpLBU, FormatILoad},
		{asmLHU(1, 2, 0), OpLHU, FormatILoad},
		{asmSB(1, 2, 0), OpSB, FormatS},
		{asmSH(1, 2, 0), OpSH, FormatS},
		{asmSW(1, 2, 0), OpSW, FormatS},
		{asmADDI(1, 2, 3), OpADDI, FormatI},
		{asmSLTI(1, 2, 3), OpSLTI, FormatI},
		{asmSLTIU(1, 2, 3), OpSLTIU, FormatI},
		{asmXORI(1, 2, 3), OpXORI, FormatI},
		{asmORI(1, 2, 3), OpORI, FormatI},
		{asmANDI(1, 2, 3), OpANDI, FormatI},
		{asmSLLI(1, 2, 3), OpSLLI, FormatI},
		{asmSRLI(1, 2, 3), OpSRLI, FormatI},
		{asmSRAI(1, 2, 3), OpSRAI, FormatI},
		{asmADD(1, 2, 3), OpADD, FormatR},
		{asmSUB(1, 2, 3), OpSUB, FormatR},
		{asmSLL(1, 2, 3), OpSLL, FormatR},
		{asmSLT(1, 2, 3), OpSLT, FormatR},
		{asmSLTU(1, 2, 3), OpSLTU, FormatR},
		{asmXOR(1, 2, 3), OpXOR, FormatR},
		{asmSRL(1, 2, 3), OpSRL, FormatR},
		{asmSRA(1, 2, 3), OpSRA, FormatR},
		{asmOR(1, 2, 3), OpOR, FormatR},
		{asmAND(1, 2, 3), OpAND, FormatR},
		{asmFENCE, OpFENCE, FormatIFence},
		{asmECALL, OpECALL, FormatSys},
		{asmEBREAK, OpEBREAK, FormatSys},
	}
	for _, tt := range tests {
		in, err := Decode(tt.word)
		if err != nil {
			t.Errorf("Decode(0x%08x): %v", tt.word, err)
			continue
		}
		if in.Op != tt.op || in.Format != tt.format {
			t.Errorf("Decode(0x%08x) = %v/%v, want %v/%v", tt.word, in.Op, in.Format, tt.op, tt.format)
		}
		if in.Raw != tt.word {
			t.Errorf("Decode(0x%08x).Raw = 0x%08x", tt.word, in.Raw)
		}
	}
}

func TestDecode_Illegal(t *testing.T) {
	tests := []struct {
		name string
		word uint32
	}{
		{"all zeros", 0x00000000},
		{"all ones", 0xFFFFFFFF},
		{"unknown opcode", 0x0000007F},
		{"jalr funct3", EncodeIType(opcodeJALR, 1, 1, 2, 0)},
		{"branch funct3=2", EncodeBType(opcodeBranch, 2, 1, 2, 8)},
		{"branch funct3=3", EncodeBType(opcodeBranch, 3, 1, 2, 8)},
		{"load funct3=3", EncodeIType(opcodeLoad, 1, 3, 2, 0)},
		{"load funct3=6", EncodeIType(opcodeLoad, 1, 6, 2, 0)},
		{"store funct3=3", EncodeSType(opcodeStore, 3, 1, 2, 0)},
		{"slli funct7", EncodeIType(opcodeOpImm, 1, 1, 2, 0x401)},
		{"slli shamt[5]", EncodeIType(opcodeOpImm, 1, 1, 2, 0x020)},
		{"srli funct7", EncodeIType(opcodeOpImm, 1, 5, 2, 0x201)},
		{"mul", EncodeRType(opcodeOp, 1, 0, 2, 3, 0x01)},
		{"add alt funct3=1", EncodeRType(opcodeOp, 1, 1, 2, 3, funct7Alt)},
		{"xor alt", EncodeRType(opcodeOp, 1, 4, 2, 3, funct7Alt)},
		{"fence.i", EncodeIType(opcodeMiscMem, 0, 1, 0, 0)},
		{"csrrw", EncodeIType(opcodeSystem, 1, 1, 2, 0x300)},
		{"ecall with rd", EncodeIType(opcodeSystem, 1, 0, 0, 0)},
		{"ecall with rs1", EncodeIType(opcodeSystem, 0, 0, 1, 0)},
		{"mret", 0x30200073},
	}
	for _, tt := range tests {
		_, err := Decode(tt.word)
		if err == nil {
			t.Errorf("%s: Decode(0x%08x) succeeded, want error", tt.name, tt.word)
			continue
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("%s: error %T is not *DecodeError", tt.name, err)
			continue
		}
		if de.Word != tt.word {
			t.Errorf("%s: DecodeError.Word = 0x%08x, want 0x%08x", tt.name, de.Word, tt.word)
		}
		if !errors.Is(err, ErrIllegalInstruction) {
			t.Errorf("%s: error does not wrap ErrIllegalInstruction", tt.name)
		}
	}
}

func TestDecode_Fields(t *testing.T) {
	in, err := Decode(asmSUB(31, 17, 9))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if in.Rd != 31 || in.Rs1 != 17 || in.Rs2 != 9 || in.Funct3 != 0 || in.Funct7 != funct7Alt {
		t.Fatalf("fields = %+v", in)
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		v     uint32
		width uint
		want  int32
	}{
		{0x7FF, 12, 2047},
		{0x800, 12, -2048},
		{0xFFF, 12, -1},
		{0x1000, 13, -4096},
		{0x0FFE, 13, 4094},
		{0x100000, 21, -1048576},
		{0x0FFFFE, 21, 1048574},
	}
	for _, tt := range tests {
		if got := signExtend(tt.v, tt.width); got != tt.want {
			t.Errorf("signExtend(0x%x, %d) = %d, want %d", tt.v, tt.width, got, tt.want)
		}
	}
}

// Encoding then decoding an immediate at the edges of its range yields the
// same value.
func TestImmediateRoundTrip(t *testing.T) {
	for _, imm := range []int32{0, 1, -1, 2047, -2048, 0x555, -0x556} {
		in, err := Decode(asmADDI(1, 2, imm))
		if err != nil || in.Imm != imm {
			t.Errorf("I imm %d: got %d, err %v", imm, in.Imm, err)
		}
		in, err = Decode(asmSW(2, 1, imm))
		if err != nil || in.Imm != imm {
			t.Errorf("S imm %d: got %d, err %v", imm, in.Imm, err)
		}
	}
	for _, imm := range []int32{0, 2, -2, 4094, -4096, 0x800, -0x800, 0x7FE} {
		in, err := Decode(asmBEQ(1, 2, imm))
		if err != nil || in.Imm != imm {
			t.Errorf("B imm %d: got %d, err %v", imm, in.Imm, err)
		}
	}
	for _, imm := range []int32{0, 2, -2, 1048574, -1048576, 0x800, 0x7FE, -0x1000} {
		in, err := Decode(asmJAL(1, imm))
		if err != nil || in.Imm != imm {
			t.Errorf("J imm %d: got %d, err %v", imm, in.Imm, err)
		}
	}
	for _, imm := range []uint32{0, 0x1000, 0xFFFFF000, 0x80000000, 0x7FFFF000} {
		in, err := Decode(asmLUI(1, imm))
		if err != nil || uint32(in.Imm) != imm {
			t.Errorf("U imm 0x%08x: got 0x%08x, err %v", imm, uint32(in.Imm), err)
		}
	}
}

func TestEncode_Inverse(t *testing.T) {
	words := []uint32{
		0x00500093, // addi ra, zero, 5
		0xfff00513, // addi a0, zero, -1
		0x00812083, // lw ra, 8(sp)
		0x00112623, // sw ra, 12(sp)
		0xfe208ee3, // beq ra, sp, -4
		0x123450b7, // lui ra, 0x12345
		0xffdff0ef, // jal ra, -4
		0x40315093, // srai ra, sp, 3
		0x403100b3, // sub ra, sp, gp
	}
	for _, w := range words {
		in, err := Decode(w)
		if err != nil {
			t.Fatalf("Decode(0x%08x): %v", w, err)
		}
		var got uint32
		rd, rs1, rs2 := uint32(in.Rd), uint32(in.Rs1), uint32(in.Rs2)
		f3, f7 := uint32(in.Funct3), uint32(in.Funct7)
		op := fieldOpcode(w)
		switch in.Format {
		case FormatR:
			got = EncodeRType(op, rd, f3, rs1, rs2, f7)
		case FormatI, FormatILoad, FormatIJump:
			got = EncodeIType(op, rd, f3, rs1, in.Imm)
		case FormatS:
			got = EncodeSType(op, f3, rs1, rs2, in.Imm)
		case FormatB:
			got = EncodeBType(op, f3, rs1, rs2, in.Imm)
		case FormatULUI, FormatUAUIPC:
			got = EncodeUType(op, rd, uint32(in.Imm))
		case FormatJ:
			got = EncodeJType(op, rd, in.Imm)
		}
		if got != w {
			t.Errorf("re-encode 0x%08x (%v) = 0x%08x", w, in.Op, got)
		}
	}
}
