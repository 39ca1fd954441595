package riscv

// RegCount is the number of general-purpose registers.
const RegCount = 32

// ABI register numbers used by the simulator.
const (
	RegZero = 0  // hard-wired zero
	RegRA   = 1  // return address
	RegSP   = 2  // stack pointer
	RegA0   = 10 // first argument; exit code for the exit syscall
	RegA7   = 17 // syscall number
)

// RegFile is the RV32I integer register file. Register 0 reads as zero no
// matter what is written to it.
type RegFile [RegCount]uint32

// Read returns the value of register r.
func (rf *RegFile) Read(r uint8) uint32 {
	return rf[r&0x1f]
}

// Write stores v into register r. Writes to x0 are discarded; this is the
// only path handlers use to update a destination register.
func (rf *RegFile) Write(r uint8, v uint32) {
	r &= 0x1f
	if r == RegZero {
		return
	}
	rf[r] = v
}

// Clear sets every register to zero.
func (rf *RegFile) Clear() {
	*rf = RegFile{}
}

// RegNames maps register numbers to their ABI names.
//
// RISC-V calling convention; the RVG assembly programmer's handbook.
var RegNames = [RegCount]string{
	0:  "zero", // hard-wired zero
	1:  "ra",   // return address
	2:  "sp",   // stack pointer
	3:  "gp",   // global pointer
	4:  "tp",   // thread pointer
	5:  "t0",   // temp/alternate link reg
	6:  "t1",
	7:  "t2",
	8:  "s0", // also known as 'fp'
	9:  "s1",
	10: "a0", // function arguments / return values
	11: "a1",
	12: "a2",
	13: "a3",
	14: "a4",
	15: "a5",
	16: "a6",
	17: "a7",
	18: "s2", // saved registers
	19: "s3",
	20: "s4",
	21: "s5",
	22: "s6",
	23: "s7",
	24: "s8",
	25: "s9",
	26: "s10",
	27: "s11",
	28: "t3", // temporaries
	29: "t4",
	30: "t5",
	31: "t6",
}

// RegisterByName returns the register number for an ABI name ("a0"), the
// frame pointer alias "fp", or a numeric name ("x10").
func RegisterByName(name string) (uint8, bool) {
	if name == "fp" {
		return 8, true
	}
	for i, n := range RegNames {
		if n == name {
			return uint8(i), true
		}
	}
	if len(name) >= 2 && name[0] == 'x' {
		var n int
		for _, c := range name[1:] {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
			if n >= RegCount {
				return 0, false
			}
		}
		return uint8(n), true
	}
	return 0, false
}
