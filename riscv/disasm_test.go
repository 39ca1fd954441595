package riscv

import "testing"

func TestInstr_String(t *testing.T) {
	tests := []struct {
		word uint32
		want string
	}{
		{0x00500093, "addi ra, zero, 5"},
		{asmADDI(RegA0, 0, 5), "addi a0, zero, 5"},
		{asmADDI(RegA0, RegA0, -1), "addi a0, a0, -1"},
		{0x00812083, "lw ra, 8(sp)"},
		{0x00112623, "sw ra, 12(sp)"},
		{asmLBU(5, 6, -16), "lbu t0, -16(t1)"},
		{asmBEQ(RegA0, 11, 16), "beq a0, a1, 16"},
		{0xfe208ee3, "beq ra, sp, -4"},
		{asmLUI(RegA0, 0x12345000), "lui a0, 0x12345"},
		{asmAUIPC(RegSP, 0xFFFFF000), "auipc sp, 0xfffff"},
		{asmJAL(RegRA, 2048), "jal ra, 2048"},
		{asmJALR(0, RegRA, 0), "jalr zero, 0(ra)"},
		{asmSUB(8, 9, 18), "sub s0, s1, s2"},
		{asmSRAI(1, 2, 31), "srai ra, sp, 31"},
		{asmSLLI(1, 2, 3), "slli ra, sp, 3"},
		{asmFENCE, "fence"},
		{asmECALL, "ecall"},
		{asmEBREAK, "ebreak"},
	}
	for _, tt := range tests {
		in, err := Decode(tt.word)
		if err != nil {
			t.Errorf("Decode(0x%08x): %v", tt.word, err)
			continue
		}
		if got := in.String(); got != tt.want {
			t.Errorf("String(0x%08x) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestDisassemble(t *testing.T) {
	code := program(0x00500093, 0xFFFFFFFF, asmEBREAK)
	code = append(code, 0x13, 0x05)
	got := Disassemble(code, 0x1000)
	want := []string{
		"00001000: 00500093  addi ra, zero, 5",
		"00001004: ffffffff  .word 0xffffffff  # illegal",
		"00001008: 00100073  ebreak",
		"0000100c:           .byte 0x13, 0x05",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
