// exec.go holds one handler per RV32I mnemonic. A handler reads the
// register file and memory, performs its side effects, and returns the next
// pc. Step assigns that value exactly once, so no handler touches c.pc.
package riscv

import "github.com/ayush-os/cpu-sim/metrics"

type handler func(c *CPU, in *Instr) (uint32, error)

// handlerFor returns the handler for op. Decode only produces ops listed
// here.
func handlerFor(op Op) handler {
	switch op {
	case OpLUI:
		return lui
	case OpAUIPC:
		return auipc
	case OpJAL:
		return jal
	case OpJALR:
		return jalr
	case OpBEQ:
		return beq
	case OpBNE:
		return bne
	case OpBLT:
		return blt
	case OpBGE:
		return bge
	case OpBLTU:
		return bltu
	case OpBGEU:
		return bgeu
	case OpLB:
		return lb
	case OpLH:
		return lh
	case OpLW:
		return lw
	case OpLBU:
		return lbu
	case OpLHU:
		return lhu
	case OpSB:
		return sb
	case OpSH:
		return sh
	case OpSW:
		return sw
	case OpADDI:
		return addi
	case OpSLTI:
		return slti
	case OpSLTIU:
		return sltiu
	case OpXORI:
		return xori
	case OpORI:
		return ori
	case OpANDI:
		return andi
	case OpSLLI:
		return slli
	case OpSRLI:
		return srli
	case OpSRAI:
		return srai
	case OpADD:
		return add
	case OpSUB:
		return sub
	case OpSLL:
		return sll
	case OpSLT:
		return slt
	case OpSLTU:
		return sltu
	case OpXOR:
		return xor
	case OpSRL:
		return srl
	case OpSRA:
		return sra
	case OpOR:
		return or
	case OpAND:
		return and
	case OpFENCE:
		return fence
	case OpECALL:
		return ecall
	case OpEBREAK:
		return ebreak
	}
	return nil
}

// execute runs the handler for in and returns the next pc.
func (c *CPU) execute(in *Instr) (uint32, error) {
	h := handlerFor(in.Op)
	if h == nil {
		return c.pc, &DecodeError{Word: in.Raw, Reason: "no handler for " + in.Op.String()}
	}
	return h(c, in)
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Upper immediates and jumps.

func lui(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, uint32(in.Imm))
	return c.pc + 4, nil
}

func auipc(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.pc+uint32(in.Imm))
	return c.pc + 4, nil
}

func jal(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.pc+4)
	return c.pc + uint32(in.Imm), nil
}

func jalr(c *CPU, in *Instr) (uint32, error) {
	// Read rs1 before writing rd; they may be the same register.
	target := (c.regs.Read(in.Rs1) + uint32(in.Imm)) &^ 1
	c.regs.Write(in.Rd, c.pc+4)
	return target, nil
}

// Branches.

func branch(c *CPU, in *Instr, taken bool) (uint32, error) {
	if taken {
		metrics.BranchesTaken.Inc()
		return c.pc + uint32(in.Imm), nil
	}
	return c.pc + 4, nil
}

func beq(c *CPU, in *Instr) (uint32, error) {
	return branch(c, in, c.regs.Read(in.Rs1) == c.regs.Read(in.Rs2))
}

func bne(c *CPU, in *Instr) (uint32, error) {
	return branch(c, in, c.regs.Read(in.Rs1) != c.regs.Read(in.Rs2))
}

func blt(c *CPU, in *Instr) (uint32, error) {
	return branch(c, in, int32(c.regs.Read(in.Rs1)) < int32(c.regs.Read(in.Rs2)))
}

func bge(c *CPU, in *Instr) (uint32, error) {
	return branch(c, in, int32(c.regs.Read(in.Rs1)) >= int32(c.regs.Read(in.Rs2)))
}

func bltu(c *CPU, in *Instr) (uint32, error) {
	return branch(c, in, c.regs.Read(in.Rs1) < c.regs.Read(in.Rs2))
}

func bgeu(c *CPU, in *Instr) (uint32, error) {
	return branch(c, in, c.regs.Read(in.Rs1) >= c.regs.Read(in.Rs2))
}

// Loads and stores. The effective address wraps modulo 2^32.

func effAddr(c *CPU, in *Instr) uint32 {
	return c.regs.Read(in.Rs1) + uint32(in.Imm)
}

func lb(c *CPU, in *Instr) (uint32, error) {
	v, err := c.load(effAddr(c, in), 1)
	if err != nil {
		return c.pc, err
	}
	c.regs.Write(in.Rd, uint32(int32(int8(v))))
	return c.pc + 4, nil
}

func lh(c *CPU, in *Instr) (uint32, error) {
	v, err := c.load(effAddr(c, in), 2)
	if err != nil {
		return c.pc, err
	}
	c.regs.Write(in.Rd, uint32(int32(int16(v))))
	return c.pc + 4, nil
}

func lw(c *CPU, in *Instr) (uint32, error) {
	v, err := c.load(effAddr(c, in), 4)
	if err != nil {
		return c.pc, err
	}
	c.regs.Write(in.Rd, v)
	return c.pc + 4, nil
}

func lbu(c *CPU, in *Instr) (uint32, error) {
	v, err := c.load(effAddr(c, in), 1)
	if err != nil {
		return c.pc, err
	}
	c.regs.Write(in.Rd, v)
	return c.pc + 4, nil
}

func lhu(c *CPU, in *Instr) (uint32, error) {
	v, err := c.load(effAddr(c, in), 2)
	if err != nil {
		return c.pc, err
	}
	c.regs.Write(in.Rd, v)
	return c.pc + 4, nil
}

func sb(c *CPU, in *Instr) (uint32, error) {
	if err := c.store(effAddr(c, in), c.regs.Read(in.Rs2), 1); err != nil {
		return c.pc, err
	}
	return c.pc + 4, nil
}

func sh(c *CPU, in *Instr) (uint32, error) {
	if err := c.store(effAddr(c, in), c.regs.Read(in.Rs2), 2); err != nil {
		return c.pc, err
	}
	return c.pc + 4, nil
}

func sw(c *CPU, in *Instr) (uint32, error) {
	if err := c.store(effAddr(c, in), c.regs.Read(in.Rs2), 4); err != nil {
		return c.pc, err
	}
	return c.pc + 4, nil
}

// Register-immediate ALU.

func addi(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)+uint32(in.Imm))
	return c.pc + 4, nil
}

func slti(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, b2u(int32(c.regs.Read(in.Rs1)) < in.Imm))
	return c.pc + 4, nil
}

func sltiu(c *CPU, in *Instr) (uint32, error) {
	// The immediate is sign-extended first, then compared unsigned.
	c.regs.Write(in.Rd, b2u(c.regs.Read(in.Rs1) < uint32(in.Imm)))
	return c.pc + 4, nil
}

func xori(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)^uint32(in.Imm))
	return c.pc + 4, nil
}

func ori(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)|uint32(in.Imm))
	return c.pc + 4, nil
}

func andi(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)&uint32(in.Imm))
	return c.pc + 4, nil
}

func slli(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)<<(uint32(in.Imm)&0x1f))
	return c.pc + 4, nil
}

func srli(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)>>(uint32(in.Imm)&0x1f))
	return c.pc + 4, nil
}

func srai(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, uint32(int32(c.regs.Read(in.Rs1))>>(uint32(in.Imm)&0x1f)))
	return c.pc + 4, nil
}

// Register-register ALU.

func add(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)+c.regs.Read(in.Rs2))
	return c.pc + 4, nil
}

func sub(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)-c.regs.Read(in.Rs2))
	return c.pc + 4, nil
}

func sll(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)<<(c.regs.Read(in.Rs2)&0x1f))
	return c.pc + 4, nil
}

func slt(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, b2u(int32(c.regs.Read(in.Rs1)) < int32(c.regs.Read(in.Rs2))))
	return c.pc + 4, nil
}

func sltu(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, b2u(c.regs.Read(in.Rs1) < c.regs.Read(in.Rs2)))
	return c.pc + 4, nil
}

func xor(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)^c.regs.Read(in.Rs2))
	return c.pc + 4, nil
}

func srl(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)>>(c.regs.Read(in.Rs2)&0x1f))
	return c.pc + 4, nil
}

func sra(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, uint32(int32(c.regs.Read(in.Rs1))>>(c.regs.Read(in.Rs2)&0x1f)))
	return c.pc + 4, nil
}

func or(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)|c.regs.Read(in.Rs2))
	return c.pc + 4, nil
}

func and(c *CPU, in *Instr) (uint32, error) {
	c.regs.Write(in.Rd, c.regs.Read(in.Rs1)&c.regs.Read(in.Rs2))
	return c.pc + 4, nil
}

// fence orders memory for other harts and devices. With one hart and
// synchronous I/O there is nothing to order.
func fence(c *CPU, in *Instr) (uint32, error) {
	return c.pc + 4, nil
}
