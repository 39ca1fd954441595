package riscv

import (
	"errors"
	"fmt"
)

// Simulator errors.
var (
	ErrIllegalInstruction = errors.New("riscv: illegal instruction")
	ErrOutOfBounds        = errors.New("riscv: memory access out of bounds")
	ErrHalted             = errors.New("riscv: cpu halted")
	ErrStepLimit          = errors.New("riscv: step limit reached")
	ErrConsole            = errors.New("riscv: console write failed")
	ErrEmptySegment       = errors.New("riscv: empty segment data")
	ErrInvalidConfig      = errors.New("riscv: invalid configuration")
)

// DecodeError reports an instruction word that maps to no RV32I operation.
type DecodeError struct {
	PC     uint32
	Word   uint32
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: word=0x%08x pc=0x%08x: %s", ErrIllegalInstruction, e.Word, e.PC, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrIllegalInstruction }

// MemoryFault reports an access outside the configured memory. The access
// is never performed.
type MemoryFault struct {
	PC    uint32
	Addr  uint32
	Width int
	Write bool
}

func (e *MemoryFault) Error() string {
	kind := "load"
	if e.Write {
		kind = "store"
	}
	return fmt.Sprintf("%v: %s of %d bytes at 0x%08x (pc=0x%08x)", ErrOutOfBounds, kind, e.Width, e.Addr, e.PC)
}

func (e *MemoryFault) Unwrap() error { return ErrOutOfBounds }
