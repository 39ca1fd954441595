package riscv

import "github.com/ayush-os/cpu-sim/log"

// Syscall numbers understood by ecall. The number is read from a7.
const (
	SyscallExit uint32 = 93 // exit code in a0
)

// ecall dispatches on a7. Unknown syscalls are ignored.
func ecall(c *CPU, in *Instr) (uint32, error) {
	switch num := c.regs.Read(RegA7); num {
	case SyscallExit:
		c.exitCode = int32(c.regs.Read(RegA0))
		c.halt(HaltExit)
		c.log.Debug("Program exited", "code", c.exitCode, "steps", c.steps+1)
	default:
		c.log.Debug("Ignoring unknown syscall", "num", num, log.Hex32("pc", c.pc))
	}
	return c.pc + 4, nil
}

func ebreak(c *CPU, in *Instr) (uint32, error) {
	c.halt(HaltBreakpoint)
	c.log.Debug("Breakpoint", log.Hex32("pc", c.pc), "steps", c.steps+1)
	return c.pc + 4, nil
}
