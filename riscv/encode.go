package riscv

// Instruction encoders. Each is the exact inverse of the decoder for its
// format; immediates are truncated to the bits the format can carry.

// EncodeRType encodes an R-type instruction.
func EncodeRType(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7&0x7f<<25 | rs2&0x1f<<20 | rs1&0x1f<<15 | funct3&0x7<<12 | rd&0x1f<<7 | opcode&0x7f
}

// EncodeIType encodes an I-type instruction.
func EncodeIType(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)&0xfff<<20 | rs1&0x1f<<15 | funct3&0x7<<12 | rd&0x1f<<7 | opcode&0x7f
}

// EncodeSType encodes an S-type instruction.
func EncodeSType(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xfff
	return u>>5<<25 | rs2&0x1f<<20 | rs1&0x1f<<15 | funct3&0x7<<12 | u&0x1f<<7 | opcode&0x7f
}

// EncodeBType encodes a B-type instruction. imm is a byte offset; bit 0 is
// dropped.
func EncodeBType(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return u>>12&0x1<<31 | u>>5&0x3f<<25 |
		rs2&0x1f<<20 | rs1&0x1f<<15 | funct3&0x7<<12 |
		u>>1&0xf<<8 | u>>11&0x1<<7 | opcode&0x7f
}

// EncodeUType encodes a U-type instruction. imm holds the upper 20 bits in
// place, as produced by the decoder.
func EncodeUType(opcode, rd uint32, imm uint32) uint32 {
	return imm&0xfffff000 | rd&0x1f<<7 | opcode&0x7f
}

// EncodeJType encodes a J-type instruction. imm is a byte offset; bit 0 is
// dropped.
func EncodeJType(opcode, rd uint32, imm int32) uint32 {
	u := uint32(imm)
	return u>>20&0x1<<31 | u>>1&0x3ff<<21 |
		u>>11&0x1<<20 | u>>12&0xff<<12 |
		rd&0x1f<<7 | opcode&0x7f
}
