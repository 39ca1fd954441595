// trace.go implements the optional execution trace. Each retired
// instruction is recorded with its pc, raw word, the register file before
// and after, and every memory access it made. The trace can be serialized
// and committed to with a Keccak-256 Merkle root.
package riscv

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ErrTraceTruncated is returned when serialized trace data ends early.
var ErrTraceTruncated = errors.New("riscv: truncated trace")

// MemOp records a single memory access.
type MemOp struct {
	Addr    uint32
	Value   uint32
	Width   uint8
	IsWrite bool
}

// TraceStep records one retired instruction.
type TraceStep struct {
	PC          uint32
	Instruction uint32
	RegsBefore  RegFile
	RegsAfter   RegFile
	MemoryOps   []MemOp
}

// Trace accumulates execution steps.
type Trace struct {
	Steps []TraceStep
}

// NewTrace creates an empty trace.
func NewTrace() *Trace {
	return &Trace{
		Steps: make([]TraceStep, 0, 256),
	}
}

// Record appends a step. memOps is copied.
func (t *Trace) Record(pc, instr uint32, before, after RegFile, memOps []MemOp) {
	step := TraceStep{
		PC:          pc,
		Instruction: instr,
		RegsBefore:  before,
		RegsAfter:   after,
	}
	if len(memOps) > 0 {
		step.MemoryOps = make([]MemOp, len(memOps))
		copy(step.MemoryOps, memOps)
	}
	t.Steps = append(t.Steps, step)
}

// Len returns the number of recorded steps.
func (t *Trace) Len() int {
	return len(t.Steps)
}

// Reset clears all recorded steps.
func (t *Trace) Reset() {
	t.Steps = t.Steps[:0]
}

const (
	traceStepBase = 4 + 4 + RegCount*4*2 + 2
	traceMemOp    = 4 + 4 + 1 + 1
)

// Serialize encodes the trace. Layout, all little-endian:
//
//	count(4)
//	per step: pc(4) instr(4) before(128) after(128) nops(2)
//	per memop: addr(4) value(4) width(1) write(1)
func (t *Trace) Serialize() []byte {
	size := 4
	for i := range t.Steps {
		size += traceStepBase + len(t.Steps[i].MemoryOps)*traceMemOp
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Steps)))
	for i := range t.Steps {
		buf = appendStep(buf, &t.Steps[i])
	}
	return buf
}

func appendStep(buf []byte, s *TraceStep) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, s.PC)
	buf = binary.LittleEndian.AppendUint32(buf, s.Instruction)
	for _, r := range s.RegsBefore {
		buf = binary.LittleEndian.AppendUint32(buf, r)
	}
	for _, r := range s.RegsAfter {
		buf = binary.LittleEndian.AppendUint32(buf, r)
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s.MemoryOps)))
	for _, op := range s.MemoryOps {
		buf = binary.LittleEndian.AppendUint32(buf, op.Addr)
		buf = binary.LittleEndian.AppendUint32(buf, op.Value)
		var w byte
		if op.IsWrite {
			w = 1
		}
		buf = append(buf, op.Width, w)
	}
	return buf
}

// DeserializeTrace decodes data produced by Serialize.
func DeserializeTrace(data []byte) (*Trace, error) {
	if len(data) < 4 {
		return nil, ErrTraceTruncated
	}
	count := binary.LittleEndian.Uint32(data)
	off := 4

	t := &Trace{Steps: make([]TraceStep, 0, min(int(count), len(data)/traceStepBase))}
	for i := uint32(0); i < count; i++ {
		if off+traceStepBase > len(data) {
			return nil, fmt.Errorf("%w: step %d", ErrTraceTruncated, i)
		}
		var s TraceStep
		s.PC = binary.LittleEndian.Uint32(data[off:])
		s.Instruction = binary.LittleEndian.Uint32(data[off+4:])
		off += 8
		for j := range s.RegsBefore {
			s.RegsBefore[j] = binary.LittleEndian.Uint32(data[off:])
			off += 4
		}
		for j := range s.RegsAfter {
			s.RegsAfter[j] = binary.LittleEndian.Uint32(data[off:])
			off += 4
		}
		n := int(binary.LittleEndian.Uint16(data[off:]))
		off += 2
		if off+n*traceMemOp > len(data) {
			return nil, fmt.Errorf("%w: memory ops of step %d", ErrTraceTruncated, i)
		}
		if n > 0 {
			s.MemoryOps = make([]MemOp, n)
			for j := range s.MemoryOps {
				s.MemoryOps[j] = MemOp{
					Addr:    binary.LittleEndian.Uint32(data[off:]),
					Value:   binary.LittleEndian.Uint32(data[off+4:]),
					Width:   data[off+8],
					IsWrite: data[off+9] != 0,
				}
				off += traceMemOp
			}
		}
		t.Steps = append(t.Steps, s)
	}
	return t, nil
}

// Commitment returns the Keccak-256 Merkle root over the step hashes. Odd
// levels duplicate their last node. An empty trace commits to the hash of
// the empty string.
func (t *Trace) Commitment() common.Hash {
	if len(t.Steps) == 0 {
		return keccak256(nil)
	}
	leaves := make([]common.Hash, len(t.Steps))
	var buf []byte
	for i := range t.Steps {
		buf = appendStep(buf[:0], &t.Steps[i])
		leaves[i] = keccak256(buf)
	}
	return merkleRoot(leaves)
}

func keccak256(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	var out common.Hash
	h.Sum(out[:0])
	return out
}

func merkleRoot(level []common.Hash) common.Hash {
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]common.Hash, len(level)/2)
		for i := range next {
			next[i] = keccak256(level[2*i][:], level[2*i+1][:])
		}
		level = next
	}
	return level[0]
}
