// Package console opens the output sink behind the simulator's console
// port. A sink is named by a target string:
//
//	stdout               the process's standard output (default)
//	stderr               the process's standard error
//	discard              drop all output
//	file:PATH            create or truncate PATH
//	serial:DEV[@BAUD]    a serial line, 8N1, default 115200 baud
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.bug.st/serial"

	"github.com/ayush-os/cpu-sim/log"
)

// DefaultBaudRate is used for serial targets without an explicit rate.
const DefaultBaudRate = 115200

// ErrBadTarget is returned for target strings that cannot be parsed.
var ErrBadTarget = errors.New("console: bad target")

// Kind identifies the type of sink.
type Kind int

const (
	Stdout Kind = iota
	Stderr
	Discard
	File
	Serial
)

func (k Kind) String() string {
	switch k {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	case Discard:
		return "discard"
	case File:
		return "file"
	case Serial:
		return "serial"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Target is a parsed target string.
type Target struct {
	Kind Kind
	Path string // file path or serial device
	Baud int    // serial only
}

func (t Target) String() string {
	switch t.Kind {
	case File:
		return "file:" + t.Path
	case Serial:
		return fmt.Sprintf("serial:%s@%d", t.Path, t.Baud)
	}
	return t.Kind.String()
}

// ParseTarget parses a target string. The empty string means stdout.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "stdout", "-":
		return Target{Kind: Stdout}, nil
	case "stderr":
		return Target{Kind: Stderr}, nil
	case "discard", "none":
		return Target{Kind: Discard}, nil
	}

	kind, rest, ok := strings.Cut(s, ":")
	if !ok || rest == "" {
		return Target{}, fmt.Errorf("%w: %q", ErrBadTarget, s)
	}
	switch kind {
	case "file":
		return Target{Kind: File, Path: rest}, nil
	case "serial":
		dev, baud, hasBaud := strings.Cut(rest, "@")
		if dev == "" {
			return Target{}, fmt.Errorf("%w: %q: missing device", ErrBadTarget, s)
		}
		t := Target{Kind: Serial, Path: dev, Baud: DefaultBaudRate}
		if hasBaud {
			n, err := strconv.Atoi(baud)
			if err != nil || n <= 0 {
				return Target{}, fmt.Errorf("%w: %q: invalid baud rate", ErrBadTarget, s)
			}
			t.Baud = n
		}
		return t, nil
	}
	return Target{}, fmt.Errorf("%w: %q: unknown kind %q", ErrBadTarget, s, kind)
}

// Sink is an open console sink. Close releases files and serial ports; it
// never closes the process's standard streams.
type Sink struct {
	io.Writer
	target Target
	closer io.Closer
}

// Target returns the target the sink was opened from.
func (s *Sink) Target() Target { return s.target }

// Close closes the underlying file or port, if any.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// openSerial is replaced in tests.
var openSerial = func(dev string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(dev, mode)
}

// Open parses target and opens the sink it names.
func Open(target string) (*Sink, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	return OpenTarget(t)
}

// OpenTarget opens a parsed target.
func OpenTarget(t Target) (*Sink, error) {
	logger := log.Default().Module("console")
	switch t.Kind {
	case Stdout:
		return &Sink{Writer: os.Stdout, target: t}, nil
	case Stderr:
		return &Sink{Writer: os.Stderr, target: t}, nil
	case Discard:
		return &Sink{Writer: io.Discard, target: t}, nil
	case File:
		f, err := os.Create(t.Path)
		if err != nil {
			return nil, fmt.Errorf("console: open %s: %w", t.Path, err)
		}
		logger.Debug("Console sink opened", "target", t.String())
		return &Sink{Writer: f, target: t, closer: f}, nil
	case Serial:
		mode := &serial.Mode{BaudRate: t.Baud, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
		port, err := openSerial(t.Path, mode)
		if err != nil {
			return nil, fmt.Errorf("console: open serial %s: %w", t.Path, err)
		}
		logger.Debug("Console sink opened", "target", t.String())
		return &Sink{Writer: port, target: t, closer: port}, nil
	}
	return nil, fmt.Errorf("%w: kind %v", ErrBadTarget, t.Kind)
}
