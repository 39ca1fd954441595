// decode.go turns 32-bit RV32I instruction words into Instr values. The
// decision tree is a switch keyed by opcode, then funct3, then funct7, so
// every accepted encoding is listed here and anything else is rejected.
package riscv

import "fmt"

// Format classifies an instruction by encoding layout and operand use.
type Format uint8

const (
	FormatR      Format = iota // register-register ALU
	FormatI                    // register-immediate ALU
	FormatILoad                // loads
	FormatIJump                // jalr
	FormatIFence               // fence
	FormatS                    // stores
	FormatB                    // branches
	FormatULUI                 // lui
	FormatUAUIPC               // auipc
	FormatJ                    // jal
	FormatSys                  // ecall, ebreak
)

var formatNames = [...]string{
	FormatR:      "R",
	FormatI:      "I",
	FormatILoad:  "I-load",
	FormatIJump:  "I-jump",
	FormatIFence: "I-fence",
	FormatS:      "S",
	FormatB:      "B",
	FormatULUI:   "U-lui",
	FormatUAUIPC: "U-auipc",
	FormatJ:      "J",
	FormatSys:    "SYS",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Op identifies a single RV32I operation.
type Op uint8

const (
	OpInvalid Op = iota
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpECALL
	OpEBREAK

	numOps
)

var opNames = [numOps]string{
	OpInvalid: "invalid",
	OpLUI:     "lui",
	OpAUIPC:   "auipc",
	OpJAL:     "jal",
	OpJALR:    "jalr",
	OpBEQ:     "beq",
	OpBNE:     "bne",
	OpBLT:     "blt",
	OpBGE:     "bge",
	OpBLTU:    "bltu",
	OpBGEU:    "bgeu",
	OpLB:      "lb",
	OpLH:      "lh",
	OpLW:      "lw",
	OpLBU:     "lbu",
	OpLHU:     "lhu",
	OpSB:      "sb",
	OpSH:      "sh",
	OpSW:      "sw",
	OpADDI:    "addi",
	OpSLTI:    "slti",
	OpSLTIU:   "sltiu",
	OpXORI:    "xori",
	OpORI:     "ori",
	OpANDI:    "andi",
	OpSLLI:    "slli",
	OpSRLI:    "srli",
	OpSRAI:    "srai",
	OpADD:     "add",
	OpSUB:     "sub",
	OpSLL:     "sll",
	OpSLT:     "slt",
	OpSLTU:    "sltu",
	OpXOR:     "xor",
	OpSRL:     "srl",
	OpSRA:     "sra",
	OpOR:      "or",
	OpAND:     "and",
	OpFENCE:   "fence",
	OpECALL:   "ecall",
	OpEBREAK:  "ebreak",
}

func (op Op) String() string {
	if op < numOps {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Base opcodes, instruction word bits [6:0].
const (
	opcodeLoad    = 0x03
	opcodeMiscMem = 0x0F
	opcodeOpImm   = 0x13
	opcodeAUIPC   = 0x17
	opcodeStore   = 0x23
	opcodeOp      = 0x33
	opcodeLUI     = 0x37
	opcodeBranch  = 0x63
	opcodeJALR    = 0x67
	opcodeJAL     = 0x6F
	opcodeSystem  = 0x73
)

// funct7 values that select between two operations sharing a funct3.
const (
	funct7Base = 0x00
	funct7Alt  = 0x20 // sub, sra, srai
)

// Instr is a decoded instruction. Only fields meaningful for Format are
// set; Imm is already sign-extended (and, for U-format, already shifted
// into bits [31:12]).
type Instr struct {
	Op     Op
	Format Format
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Funct3 uint8
	Funct7 uint8
	Imm    int32
	Raw    uint32
}

// Field extraction.
func fieldOpcode(w uint32) uint32 { return w & 0x7f }
func fieldRd(w uint32) uint8      { return uint8(w >> 7 & 0x1f) }
func fieldRs1(w uint32) uint8     { return uint8(w >> 15 & 0x1f) }
func fieldRs2(w uint32) uint8     { return uint8(w >> 20 & 0x1f) }
func fieldFunct3(w uint32) uint8  { return uint8(w >> 12 & 0x7) }
func fieldFunct7(w uint32) uint8  { return uint8(w >> 25 & 0x7f) }

// signExtend sign-extends the low width bits of v by shifting them to the
// top of a 32-bit word and arithmetic-shifting back.
func signExtend(v uint32, width uint) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift
}

// immI: word[31:20] -> imm[11:0].
func immI(w uint32) int32 {
	return signExtend(w>>20, 12)
}

// immS: word[31:25] -> imm[11:5], word[11:7] -> imm[4:0].
func immS(w uint32) int32 {
	v := (w>>25&0x7f)<<5 | w>>7&0x1f
	return signExtend(v, 12)
}

// immB: word[31] -> imm[12], word[7] -> imm[11], word[30:25] -> imm[10:5],
// word[11:8] -> imm[4:1]. imm[0] is always zero.
func immB(w uint32) int32 {
	v := (w>>31&0x1)<<12 |
		(w>>7&0x1)<<11 |
		(w>>25&0x3f)<<5 |
		(w>>8&0xf)<<1
	return signExtend(v, 13)
}

// immU: word[31:12] -> imm[31:12].
func immU(w uint32) int32 {
	return int32(w & 0xfffff000)
}

// immJ: word[31] -> imm[20], word[19:12] -> imm[19:12], word[20] -> imm[11],
// word[30:21] -> imm[10:1]. imm[0] is always zero.
func immJ(w uint32) int32 {
	v := (w>>31&0x1)<<20 |
		(w>>12&0xff)<<12 |
		(w>>20&0x1)<<11 |
		(w>>21&0x3ff)<<1
	return signExtend(v, 21)
}

// Decode decodes one instruction word. Unsupported encodings return a
// *DecodeError whose PC is left for the caller to fill in.
func Decode(w uint32) (Instr, error) {
	in := Instr{Raw: w}
	illegal := func(format string, args ...any) (Instr, error) {
		return Instr{Raw: w}, &DecodeError{Word: w, Reason: fmt.Sprintf(format, args...)}
	}

	switch op := fieldOpcode(w); op {
	case opcodeLUI:
		in.Op, in.Format = OpLUI, FormatULUI
		in.Rd, in.Imm = fieldRd(w), immU(w)

	case opcodeAUIPC:
		in.Op, in.Format = OpAUIPC, FormatUAUIPC
		in.Rd, in.Imm = fieldRd(w), immU(w)

	case opcodeJAL:
		in.Op, in.Format = OpJAL, FormatJ
		in.Rd, in.Imm = fieldRd(w), immJ(w)

	case opcodeJALR:
		in.Format, in.Funct3 = FormatIJump, fieldFunct3(w)
		if in.Funct3 != 0 {
			return illegal("jalr funct3=%#x", in.Funct3)
		}
		in.Op = OpJALR
		in.Rd, in.Rs1, in.Imm = fieldRd(w), fieldRs1(w), immI(w)

	case opcodeBranch:
		in.Format, in.Funct3 = FormatB, fieldFunct3(w)
		switch in.Funct3 {
		case 0:
			in.Op = OpBEQ
		case 1:
			in.Op = OpBNE
		case 4:
			in.Op = OpBLT
		case 5:
			in.Op = OpBGE
		case 6:
			in.Op = OpBLTU
		case 7:
			in.Op = OpBGEU
		default:
			return illegal("branch funct3=%#x", in.Funct3)
		}
		in.Rs1, in.Rs2, in.Imm = fieldRs1(w), fieldRs2(w), immB(w)

	case opcodeLoad:
		in.Format, in.Funct3 = FormatILoad, fieldFunct3(w)
		switch in.Funct3 {
		case 0:
			in.Op = OpLB
		case 1:
			in.Op = OpLH
		case 2:
			in.Op = OpLW
		case 4:
			in.Op = OpLBU
		case 5:
			in.Op = OpLHU
		default:
			return illegal("load funct3=%#x", in.Funct3)
		}
		in.Rd, in.Rs1, in.Imm = fieldRd(w), fieldRs1(w), immI(w)

	case opcodeStore:
		in.Format, in.Funct3 = FormatS, fieldFunct3(w)
		switch in.Funct3 {
		case 0:
			in.Op = OpSB
		case 1:
			in.Op = OpSH
		case 2:
			in.Op = OpSW
		default:
			return illegal("store funct3=%#x", in.Funct3)
		}
		in.Rs1, in.Rs2, in.Imm = fieldRs1(w), fieldRs2(w), immS(w)

	case opcodeOpImm:
		in.Format, in.Funct3 = FormatI, fieldFunct3(w)
		in.Rd, in.Rs1, in.Imm = fieldRd(w), fieldRs1(w), immI(w)
		switch in.Funct3 {
		case 0:
			in.Op = OpADDI
		case 2:
			in.Op = OpSLTI
		case 3:
			in.Op = OpSLTIU
		case 4:
			in.Op = OpXORI
		case 6:
			in.Op = OpORI
		case 7:
			in.Op = OpANDI
		case 1:
			// imm[11:5] must be zero; shamt[5] set is illegal on RV32.
			in.Funct7 = fieldFunct7(w)
			if in.Funct7 != funct7Base {
				return illegal("slli funct7=%#x", in.Funct7)
			}
			in.Op = OpSLLI
		case 5:
			in.Funct7 = fieldFunct7(w)
			switch in.Funct7 {
			case funct7Base:
				in.Op = OpSRLI
			case funct7Alt:
				in.Op = OpSRAI
			default:
				return illegal("shift-right-immediate funct7=%#x", in.Funct7)
			}
		}

	case opcodeOp:
		in.Format = FormatR
		in.Funct3, in.Funct7 = fieldFunct3(w), fieldFunct7(w)
		in.Rd, in.Rs1, in.Rs2 = fieldRd(w), fieldRs1(w), fieldRs2(w)
		switch in.Funct7 {
		case funct7Base:
			in.Op = [8]Op{OpADD, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpOR, OpAND}[in.Funct3]
		case funct7Alt:
			switch in.Funct3 {
			case 0:
				in.Op = OpSUB
			case 5:
				in.Op = OpSRA
			default:
				return illegal("op funct3=%#x funct7=%#x", in.Funct3, in.Funct7)
			}
		default:
			return illegal("op funct7=%#x", in.Funct7)
		}

	case opcodeMiscMem:
		in.Format, in.Funct3 = FormatIFence, fieldFunct3(w)
		if in.Funct3 != 0 {
			return illegal("misc-mem funct3=%#x", in.Funct3)
		}
		in.Op = OpFENCE
		in.Rd, in.Rs1, in.Imm = fieldRd(w), fieldRs1(w), immI(w)

	case opcodeSystem:
		in.Format, in.Funct3 = FormatSys, fieldFunct3(w)
		if in.Funct3 != 0 || fieldRd(w) != 0 || fieldRs1(w) != 0 {
			return illegal("system instruction 0x%08x", w)
		}
		switch w >> 20 {
		case 0:
			in.Op = OpECALL
		case 1:
			in.Op = OpEBREAK
		default:
			return illegal("system imm=%#x", w>>20)
		}

	default:
		return illegal("opcode=0x%02x", op)
	}
	return in, nil
}
