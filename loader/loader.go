// Package loader reads program images and places them in simulator memory.
// Three formats are understood: raw binaries, hex-word text files and
// 32-bit little-endian RISC-V ELF executables.
package loader

import (
	"bufio"
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ayush-os/cpu-sim/log"
	"github.com/ayush-os/cpu-sim/metrics"
	"github.com/ayush-os/cpu-sim/riscv"
)

// Loader errors.
var (
	ErrEmptyImage    = errors.New("loader: empty image")
	ErrUnknownFormat = errors.New("loader: unknown format")
	ErrBadHex        = errors.New("loader: malformed hex word")
	ErrNotRISCV      = errors.New("loader: not a 32-bit little-endian RISC-V ELF")
	ErrSegmentSize   = errors.New("loader: segment extends past the address space")
)

// Format selects how an image file is parsed.
type Format string

const (
	FormatAuto Format = "auto"
	FormatRaw  Format = "raw"
	FormatHex  Format = "hex"
	FormatELF  Format = "elf"
)

// ParseFormat validates a format name. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatRaw, FormatHex, FormatELF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Segment is a contiguous block of bytes to place at Addr.
type Segment struct {
	Addr uint32
	Data []byte
}

// Image is a parsed program.
type Image struct {
	Format   Format
	Entry    uint32
	Segments []Segment
}

// Size returns the total number of bytes across all segments.
func (img *Image) Size() int {
	n := 0
	for _, s := range img.Segments {
		n += len(s.Data)
	}
	return n
}

// Load copies every segment into mem.
func (img *Image) Load(mem *riscv.Memory) error {
	if len(img.Segments) == 0 {
		return ErrEmptyImage
	}
	for _, s := range img.Segments {
		if err := mem.LoadSegment(s.Addr, s.Data); err != nil {
			return fmt.Errorf("loader: segment at 0x%08x: %w", s.Addr, err)
		}
	}
	metrics.ImageBytes.Set(int64(img.Size()))
	return nil
}

// Raw wraps a flat binary loaded at base. The entry point is base.
func Raw(data []byte, base uint32) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return &Image{
		Format:   FormatRaw,
		Entry:    base,
		Segments: []Segment{{Addr: base, Data: data}},
	}, nil
}

// ParseHex reads whitespace-separated 32-bit instruction words written in
// hex, with or without a 0x prefix. Text after '#' or "//" on a line is
// ignored. Words are stored little-endian starting at base.
func ParseHex(r io.Reader, base uint32) (*Image, error) {
	var code []byte
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.Index(text, "#"); i >= 0 {
			text = text[:i]
		}
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}
		for _, tok := range strings.Fields(text) {
			w, err := parseHexWord(tok)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			code = binary.LittleEndian.AppendUint32(code, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("loader: read hex: %w", err)
	}
	img, err := Raw(code, base)
	if err != nil {
		return nil, err
	}
	img.Format = FormatHex
	return img, nil
}

// parseHexWord decodes an 8-digit hex token.
func parseHexWord(tok string) (uint32, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
	if len(digits) != 8 {
		return 0, fmt.Errorf("%w: %q: want 8 digits", ErrBadHex, tok)
	}
	b, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadHex, tok, err)
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadELF parses an ELF executable. Only PT_LOAD segments are kept; the
// part of a segment beyond its file size is zero-filled.
func ReadELF(r io.ReaderAt) (*Image, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 || f.Data != elf.ELFDATA2LSB || f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%w: class=%v data=%v machine=%v", ErrNotRISCV, f.Class, f.Data, f.Machine)
	}

	img := &Image{Format: FormatELF, Entry: uint32(f.Entry)}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Memsz == 0 {
			continue
		}
		if p.Filesz > p.Memsz {
			return nil, fmt.Errorf("loader: segment at 0x%08x: file size exceeds memory size", p.Vaddr)
		}
		// Nothing may be loaded at or above the console port.
		if p.Vaddr+p.Memsz > uint64(riscv.ConsolePort) {
			return nil, fmt.Errorf("%w: 0x%08x+%d", ErrSegmentSize, p.Vaddr, p.Memsz)
		}
		data := make([]byte, p.Memsz)
		if _, err := io.ReadFull(p.Open(), data[:p.Filesz]); err != nil {
			return nil, fmt.Errorf("loader: read segment at 0x%08x: %w", p.Vaddr, err)
		}
		img.Segments = append(img.Segments, Segment{Addr: uint32(p.Vaddr), Data: data})
	}
	if len(img.Segments) == 0 {
		return nil, ErrEmptyImage
	}
	return img, nil
}

var elfMagic = []byte(elf.ELFMAG)

// Detect guesses the format of an image from its name and leading bytes.
func Detect(name string, head []byte) Format {
	if bytes.HasPrefix(head, elfMagic) {
		return FormatELF
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hex", ".txt":
		return FormatHex
	case ".elf":
		return FormatELF
	}
	return FormatRaw
}

// Open reads the image at path. base is the load address for raw and hex
// images and is ignored for ELF.
func Open(path string, format Format, base uint32) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	if format == "" || format == FormatAuto {
		format = Detect(path, data)
	}

	var img *Image
	switch format {
	case FormatRaw:
		img, err = Raw(data, base)
	case FormatHex:
		img, err = ParseHex(bytes.NewReader(data), base)
	case FormatELF:
		img, err = ReadELF(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Default().Module("loader").Debug("Image loaded",
		"path", path, "format", string(img.Format), log.Hex32("entry", img.Entry),
		"segments", len(img.Segments), "bytes", img.Size())
	return img, nil
}
