package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ayush-os/cpu-sim/riscv"
)

// Configuration errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidNumber      = errors.New("invalid number")
)

// Config holds the settings of the run command. Values come from an
// optional YAML file; flags set on the command line take precedence.
type Config struct {
	Format    string  `yaml:"format"`
	Base      uint32  `yaml:"base"`
	Entry     *uint32 `yaml:"entry"` // nil uses the image entry point
	Memory    uint32  `yaml:"memory"`
	Stack     uint32  `yaml:"stack"` // zero places sp at the top of memory
	Steps     uint64  `yaml:"steps"`
	Console   string  `yaml:"console"`
	Trace     bool    `yaml:"trace"`
	TraceOut  string  `yaml:"trace_out"`
	LogSteps  bool    `yaml:"log_steps"`
	Verbosity int     `yaml:"verbosity"`
	LogLevel  string  `yaml:"log_level"` // overrides Verbosity when set
	Metrics   bool    `yaml:"metrics"`
	Regs      bool    `yaml:"regs"`
}

// DefaultConfig returns the run command defaults.
func DefaultConfig() Config {
	return Config{
		Format:    "auto",
		Memory:    riscv.DefaultMemorySize,
		Console:   "stdout",
		Verbosity: 2,
	}
}

// LoadConfig reads a YAML config file. Fields missing from the file keep
// their defaults. If path is empty, the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// stackTop resolves the initial stack pointer.
func (c Config) stackTop() uint32 {
	if c.Stack == 0 {
		return c.Memory
	}
	return c.Stack
}

// uint32Value is a flag.Value for addresses and sizes. It accepts decimal,
// 0x hex, 0o octal and 0b binary.
type uint32Value struct {
	p *uint32
}

func (v *uint32Value) String() string {
	if v.p == nil {
		return "0"
	}
	return fmt.Sprintf("0x%x", *v.p)
}

func (v *uint32Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("%w %q", ErrInvalidNumber, s)
	}
	*v.p = uint32(n)
	return nil
}

func (v *uint32Value) Type() string { return "uint32" }
