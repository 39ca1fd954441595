// Package riscv implements a functional RV32I simulator: a register file, a
// flat little-endian memory with a console output port, an instruction
// decoder, and a fetch-decode-execute loop.
//
// A CPU is not safe for concurrent use.
package riscv

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ayush-os/cpu-sim/log"
	"github.com/ayush-os/cpu-sim/metrics"
)

// State is the run state of a CPU.
type State uint8

const (
	Running State = iota
	Halted
)

func (s State) String() string {
	if s == Halted {
		return "halted"
	}
	return "running"
}

// HaltReason records why a CPU stopped.
type HaltReason uint8

const (
	HaltNone HaltReason = iota
	HaltExit
	HaltBreakpoint
	HaltDecode
	HaltMemoryFault
	HaltConsole
	HaltError
)

var haltReasonNames = [...]string{
	HaltNone:        "none",
	HaltExit:        "exit",
	HaltBreakpoint:  "breakpoint",
	HaltDecode:      "decode",
	HaltMemoryFault: "memfault",
	HaltConsole:     "console",
	HaltError:       "error",
}

func (r HaltReason) String() string {
	if int(r) < len(haltReasonNames) {
		return haltReasonNames[r]
	}
	return fmt.Sprintf("HaltReason(%d)", uint8(r))
}

// Config holds the parameters of a CPU.
type Config struct {
	MemorySize uint32 // bytes of backing memory
	Entry      uint32 // initial pc
	StackTop   uint32 // initial sp; zero leaves sp at zero
	StepLimit  uint64 // Run stops after this many steps; zero means no limit

	Console  io.Writer   // console port sink; nil discards output
	Trace    bool        // record an execution trace
	LogSteps bool        // log every instruction at debug level
	Logger   *log.Logger // nil uses the default logger
}

// DefaultConfig returns a Config with a 16 MiB memory, entry at address 0
// and no stack pointer set.
func DefaultConfig() Config {
	return Config{
		MemorySize: DefaultMemorySize,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.MemorySize < MinMemorySize {
		return fmt.Errorf("%w: memory size %d below minimum %d", ErrInvalidConfig, c.MemorySize, MinMemorySize)
	}
	if c.MemorySize > ConsolePort {
		return fmt.Errorf("%w: memory size %#x overlaps console port", ErrInvalidConfig, c.MemorySize)
	}
	if uint64(c.Entry)+4 > uint64(c.MemorySize) {
		return fmt.Errorf("%w: entry 0x%08x outside memory", ErrInvalidConfig, c.Entry)
	}
	if c.StackTop > c.MemorySize {
		return fmt.Errorf("%w: stack top 0x%08x outside memory", ErrInvalidConfig, c.StackTop)
	}
	return nil
}

// CPU is a single RV32I hart.
type CPU struct {
	cfg  Config
	regs RegFile
	pc   uint32
	mem  *Memory

	state    State
	reason   HaltReason
	exitCode int32
	steps    uint64

	trace  *Trace
	memOps []MemOp // accesses of the current step, when tracing

	log *log.Logger
}

// New creates a CPU with zeroed memory and registers in their reset state.
func New(cfg Config) (*CPU, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &CPU{
		cfg: cfg,
		mem: NewMemory(cfg.MemorySize, cfg.Console),
		log: cfg.Logger,
	}
	if c.log == nil {
		c.log = log.Default().Module("cpu")
	}
	if cfg.Trace {
		c.trace = NewTrace()
	}
	c.Reset()
	return c, nil
}

// Reset returns the CPU to its initial state. Registers are zeroed, sp is
// set to the configured stack top, and pc to the entry point. Memory is
// left untouched so a loaded program survives.
func (c *CPU) Reset() {
	c.regs.Clear()
	if c.cfg.StackTop != 0 {
		c.regs.Write(RegSP, c.cfg.StackTop)
	}
	c.pc = c.cfg.Entry
	c.state = Running
	c.reason = HaltNone
	c.exitCode = 0
	c.steps = 0
	if c.trace != nil {
		c.trace.Reset()
	}
}

// Fetch reads the instruction word at pc.
func (c *CPU) Fetch(pc uint32) (uint32, error) {
	w, err := c.mem.ReadWord(pc)
	if err != nil {
		return 0, c.faultAt(pc, err)
	}
	return w, nil
}

// Step executes one instruction and reports whether the CPU is still
// running. Any error halts the CPU; stepping a halted CPU returns ErrHalted.
func (c *CPU) Step() (bool, error) {
	if c.state == Halted {
		return false, ErrHalted
	}
	pc := c.pc

	var before RegFile
	if c.trace != nil {
		before = c.regs
		c.memOps = c.memOps[:0]
	}

	word, err := c.Fetch(pc)
	if err != nil {
		return false, c.fail(err)
	}
	in, err := Decode(word)
	if err != nil {
		return false, c.fail(err)
	}
	if c.cfg.LogSteps && c.log.Enabled(slog.LevelDebug) {
		c.log.Debug("Step", log.Hex32("pc", pc), log.Hex32("word", word), "insn", in.String())
	}

	next, err := c.execute(&in)
	if err != nil {
		return false, c.fail(err)
	}
	c.pc = next
	c.steps++

	metrics.InstructionsRetired.Inc()
	formatCounters[in.Format].Inc()
	if c.trace != nil {
		c.trace.Record(pc, word, before, c.regs, c.memOps)
	}
	return c.state == Running, nil
}

// Run steps until the CPU halts. It returns nil when the program exits or
// hits ebreak, and the halting error otherwise. If a step limit is
// configured and reached, Run returns ErrStepLimit with the CPU still
// running.
func (c *CPU) Run() error {
	timer := metrics.NewTimer(metrics.RunTime)
	defer timer.Stop()

	for {
		if c.cfg.StepLimit > 0 && c.steps >= c.cfg.StepLimit {
			return fmt.Errorf("%w: %d steps", ErrStepLimit, c.steps)
		}
		running, err := c.Step()
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
	}
}

// halt stops the CPU with the given reason.
func (c *CPU) halt(reason HaltReason) {
	c.state = Halted
	c.reason = reason
	metrics.Halts.Inc()
	metrics.DefaultRegistry.Counter("cpu.halts." + reason.String()).Inc()
}

// fail halts the CPU for err and returns it.
func (c *CPU) fail(err error) error {
	var (
		de *DecodeError
		mf *MemoryFault
	)
	switch {
	case errors.As(err, &de):
		de.PC = c.pc
		metrics.DecodeErrors.Inc()
		c.halt(HaltDecode)
	case errors.As(err, &mf):
		metrics.MemoryFaults.Inc()
		c.halt(HaltMemoryFault)
	case errors.Is(err, ErrConsole):
		c.halt(HaltConsole)
	default:
		c.halt(HaltError)
	}
	c.log.Warn("CPU halted", "reason", c.reason.String(), "steps", c.steps, "err", err)
	return err
}

// faultAt stamps the faulting pc onto a memory fault.
func (c *CPU) faultAt(pc uint32, err error) error {
	var mf *MemoryFault
	if errors.As(err, &mf) {
		mf.PC = pc
	}
	return err
}

// load reads width bytes at addr on behalf of the current instruction.
func (c *CPU) load(addr uint32, width int) (uint32, error) {
	var (
		v   uint32
		err error
	)
	switch width {
	case 1:
		var b byte
		b, err = c.mem.ReadByteAt(addr)
		v = uint32(b)
	case 2:
		var h uint16
		h, err = c.mem.ReadHalfword(addr)
		v = uint32(h)
	default:
		v, err = c.mem.ReadWord(addr)
	}
	if err != nil {
		return 0, c.faultAt(c.pc, err)
	}
	metrics.LoadsExecuted.Inc()
	if c.trace != nil {
		c.memOps = append(c.memOps, MemOp{Addr: addr, Value: v, Width: uint8(width)})
	}
	return v, nil
}

// store writes the low width bytes of v at addr on behalf of the current
// instruction.
func (c *CPU) store(addr, v uint32, width int) error {
	var err error
	switch width {
	case 1:
		v &= 0xff
		err = c.mem.WriteByteAt(addr, byte(v))
	case 2:
		v &= 0xffff
		err = c.mem.WriteHalfword(addr, uint16(v))
	default:
		err = c.mem.WriteWord(addr, v)
	}
	if err != nil {
		return c.faultAt(c.pc, err)
	}
	metrics.StoresExecuted.Inc()
	if c.trace != nil {
		c.memOps = append(c.memOps, MemOp{Addr: addr, Value: v, Width: uint8(width), IsWrite: true})
	}
	return nil
}

// PC returns the program counter.
func (c *CPU) PC() uint32 { return c.pc }

// SetPC sets the program counter.
func (c *CPU) SetPC(pc uint32) { c.pc = pc }

// Reg returns the value of register r.
func (c *CPU) Reg(r uint8) uint32 { return c.regs.Read(r) }

// SetReg sets register r. Writes to x0 are discarded.
func (c *CPU) SetReg(r uint8, v uint32) { c.regs.Write(r, v) }

// Registers returns a copy of the register file.
func (c *CPU) Registers() RegFile { return c.regs }

// State returns the run state.
func (c *CPU) State() State { return c.state }

// HaltReason returns why the CPU halted, or HaltNone while running.
func (c *CPU) HaltReason() HaltReason { return c.reason }

// ExitCode returns a0 as passed to the exit syscall.
func (c *CPU) ExitCode() int32 { return c.exitCode }

// Steps returns the number of retired instructions since the last reset.
func (c *CPU) Steps() uint64 { return c.steps }

// Memory returns the CPU's memory.
func (c *CPU) Memory() *Memory { return c.mem }

// Trace returns the execution trace, or nil if tracing is disabled.
func (c *CPU) Trace() *Trace { return c.trace }

// formatCounters holds one retired-instruction counter per format.
var formatCounters = func() (cs [len(formatNames)]*metrics.Counter) {
	for f := range cs {
		name := strings.ToLower(strings.ReplaceAll(Format(f).String(), "-", "_"))
		cs[f] = metrics.DefaultRegistry.Counter("cpu.format." + name)
	}
	return cs
}()
