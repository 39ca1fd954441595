// memory.go implements the flat, bounds-checked memory of the simulator.
// All multi-byte accesses are little-endian and may be unaligned. A single
// address, ConsolePort, is not backed by storage: stores to it are sent to
// the console sink instead.
package riscv

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ayush-os/cpu-sim/metrics"
)

// Memory constants.
const (
	// DefaultMemorySize is 16 MiB.
	DefaultMemorySize uint32 = 16 << 20

	// MinMemorySize is enough to hold one instruction.
	MinMemorySize uint32 = 4

	// ConsolePort is the store address redirected to the console sink. It
	// also bounds the memory size so the port can never alias storage.
	ConsolePort uint32 = 0xFFFF0000
)

// Memory is a flat byte-addressable memory of fixed size.
type Memory struct {
	data    []byte
	console io.Writer
}

// NewMemory creates a zeroed memory of the given size. Console stores are
// written to console; a nil console discards them.
func NewMemory(size uint32, console io.Writer) *Memory {
	if console == nil {
		console = io.Discard
	}
	return &Memory{
		data:    make([]byte, size),
		console: console,
	}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// SetConsole replaces the console sink.
func (m *Memory) SetConsole(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	m.console = w
}

// slice returns the backing bytes for [addr, addr+width) or a fault. The end
// is computed in 64 bits so addresses near 2^32 cannot wrap into range.
func (m *Memory) slice(addr uint32, width int, write bool) ([]byte, error) {
	if uint64(addr)+uint64(width) > uint64(len(m.data)) {
		return nil, &MemoryFault{Addr: addr, Width: width, Write: write}
	}
	return m.data[addr : addr+uint32(width)], nil
}

// ReadByteAt reads a single byte.
func (m *Memory) ReadByteAt(addr uint32) (byte, error) {
	b, err := m.slice(addr, 1, false)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadHalfword reads a 16-bit little-endian value.
func (m *Memory) ReadHalfword(addr uint32) (uint16, error) {
	b, err := m.slice(addr, 2, false)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadWord reads a 32-bit little-endian value.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	b, err := m.slice(addr, 4, false)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// WriteByteAt writes a single byte.
func (m *Memory) WriteByteAt(addr uint32, val byte) error {
	if addr == ConsolePort {
		return m.emit([]byte{val})
	}
	b, err := m.slice(addr, 1, true)
	if err != nil {
		return err
	}
	b[0] = val
	return nil
}

// WriteHalfword writes a 16-bit little-endian value.
func (m *Memory) WriteHalfword(addr uint32, val uint16) error {
	if addr == ConsolePort {
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], val)
		return m.emit(buf[:])
	}
	b, err := m.slice(addr, 2, true)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, val)
	return nil
}

// WriteWord writes a 32-bit little-endian value.
func (m *Memory) WriteWord(addr uint32, val uint32) error {
	if addr == ConsolePort {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], val)
		return m.emit(buf[:])
	}
	b, err := m.slice(addr, 4, true)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, val)
	return nil
}

// emit sends one store's worth of bytes to the console, followed by a
// newline, in a single write.
func (m *Memory) emit(p []byte) error {
	line := make([]byte, 0, len(p)+1)
	line = append(line, p...)
	line = append(line, '\n')
	if _, err := m.console.Write(line); err != nil {
		return fmt.Errorf("%w: %v", ErrConsole, err)
	}
	metrics.ConsoleBytes.Add(int64(len(p)))
	return nil
}

// LoadSegment copies data into memory starting at base, as a loader does
// for program segments.
func (m *Memory) LoadSegment(base uint32, data []byte) error {
	if len(data) == 0 {
		return ErrEmptySegment
	}
	b, err := m.slice(base, len(data), true)
	if err != nil {
		return fmt.Errorf("load segment: %w", err)
	}
	copy(b, data)
	return nil
}

// Bytes returns a copy of [addr, addr+n).
func (m *Memory) Bytes(addr uint32, n int) ([]byte, error) {
	b, err := m.slice(addr, n, false)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Clear zeroes the whole memory.
func (m *Memory) Clear() {
	clear(m.data)
}
