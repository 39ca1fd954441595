package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayush-os/cpu-sim/console"
	"github.com/ayush-os/cpu-sim/loader"
	"github.com/ayush-os/cpu-sim/log"
	"github.com/ayush-os/cpu-sim/metrics"
	"github.com/ayush-os/cpu-sim/riscv"
)

func (a *app) runCommand() *cobra.Command {
	var (
		configPath string
		entry      uint32
	)
	flags := DefaultConfig()
	flags.Entry = &entry

	cmd := &cobra.Command{
		Use:   "run [flags] IMAGE",
		Short: "Load a program image and run it until it halts",
		Long: `Run loads a raw binary, hex-word text or ELF32 RISC-V image and
executes it. Stores to 0xFFFF0000 print to the console sink. The program
ends with ecall 93 (exit code in a0) or ebreak.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			mergeFlags(&cfg, &flags, cmd.Flags().Changed)
			code, err := a.simulate(args[0], cfg)
			a.exitCode = code
			return err
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&configPath, "config", "", "YAML config file")
	fs.StringVar(&flags.Format, "format", flags.Format, "image format (auto, raw, hex, elf)")
	fs.Var(&uint32Value{&flags.Base}, "base", "load address for raw and hex images")
	fs.Var(&uint32Value{&entry}, "entry", "initial pc (default: image entry point)")
	fs.Var(&uint32Value{&flags.Memory}, "mem", "memory size in bytes")
	fs.Var(&uint32Value{&flags.Stack}, "stack", "initial sp (default: top of memory)")
	fs.Uint64Var(&flags.Steps, "steps", flags.Steps, "stop after this many instructions (0 = no limit)")
	fs.StringVar(&flags.Console, "console", flags.Console, "console sink (stdout, stderr, discard, file:PATH, serial:DEV[@BAUD])")
	fs.BoolVar(&flags.Trace, "trace", flags.Trace, "record an execution trace and print its commitment")
	fs.StringVar(&flags.TraceOut, "trace-out", flags.TraceOut, "write the serialized trace to this file")
	fs.BoolVar(&flags.LogSteps, "log-steps", flags.LogSteps, "log every instruction (needs debug level)")
	fs.IntVar(&flags.Verbosity, "verbosity", flags.Verbosity, "log level 0-5 (0=silent, 5=trace)")
	fs.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level name; overrides --verbosity")
	fs.BoolVar(&flags.Metrics, "metrics", flags.Metrics, "print metrics in Prometheus text format after the run")
	fs.BoolVar(&flags.Regs, "regs", flags.Regs, "print the register file after the run")
	return cmd
}

// mergeFlags copies every flag the user set explicitly from f into cfg.
func mergeFlags(cfg, f *Config, changed func(string) bool) {
	if changed("format") {
		cfg.Format = f.Format
	}
	if changed("base") {
		cfg.Base = f.Base
	}
	if changed("entry") {
		e := *f.Entry
		cfg.Entry = &e
	}
	if changed("mem") {
		cfg.Memory = f.Memory
	}
	if changed("stack") {
		cfg.Stack = f.Stack
	}
	if changed("steps") {
		cfg.Steps = f.Steps
	}
	if changed("console") {
		cfg.Console = f.Console
	}
	if changed("trace") {
		cfg.Trace = f.Trace
	}
	if changed("trace-out") {
		cfg.TraceOut = f.TraceOut
	}
	if changed("log-steps") {
		cfg.LogSteps = f.LogSteps
	}
	if changed("verbosity") {
		cfg.Verbosity = f.Verbosity
	}
	if changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if changed("metrics") {
		cfg.Metrics = f.Metrics
	}
	if changed("regs") {
		cfg.Regs = f.Regs
	}
}

// simulate runs the image at path and returns the process exit code.
func (a *app) simulate(path string, cfg Config) (int, error) {
	if err := setupLogging(a.stderr, cfg.Verbosity, cfg.LogLevel); err != nil {
		return 1, err
	}
	logger := log.Default().Module("cli")

	format, err := loader.ParseFormat(cfg.Format)
	if err != nil {
		return 1, err
	}
	img, err := loader.Open(path, format, cfg.Base)
	if err != nil {
		return 1, err
	}

	sink, err := console.Open(cfg.Console)
	if err != nil {
		return 1, err
	}
	defer sink.Close()

	rc := riscv.DefaultConfig()
	rc.MemorySize = cfg.Memory
	rc.Entry = img.Entry
	if cfg.Entry != nil {
		rc.Entry = *cfg.Entry
	}
	rc.StackTop = cfg.stackTop()
	rc.StepLimit = cfg.Steps
	rc.Console = sink
	rc.Trace = cfg.Trace || cfg.TraceOut != ""
	rc.LogSteps = cfg.LogSteps

	cpu, err := riscv.New(rc)
	if err != nil {
		return 1, err
	}
	if err := img.Load(cpu.Memory()); err != nil {
		return 1, err
	}

	logger.Info("Starting simulation", "version", version, "image", path,
		"format", string(img.Format), log.Hex32("entry", rc.Entry),
		"memory", rc.MemorySize, "console", sink.Target().String())

	runErr := cpu.Run()

	logger.Info("Simulation finished", "steps", cpu.Steps(), "state", cpu.State().String(),
		"reason", cpu.HaltReason().String(), "exit", cpu.ExitCode())

	if err := a.report(cpu, cfg); err != nil {
		return 1, err
	}
	if runErr != nil {
		if errors.Is(runErr, riscv.ErrStepLimit) {
			logger.Warn("Step limit reached", log.Hex32("pc", cpu.PC()))
		}
		return 1, runErr
	}
	if cpu.HaltReason() == riscv.HaltExit {
		return int(uint8(cpu.ExitCode())), nil
	}
	return 0, nil
}

// report prints the optional post-run output: registers, trace commitment
// and metrics.
func (a *app) report(cpu *riscv.CPU, cfg Config) error {
	if cfg.Regs {
		writeRegisters(a.stdout, cpu)
	}
	if tr := cpu.Trace(); tr != nil {
		if cfg.Trace {
			fmt.Fprintf(a.stdout, "trace: %d steps, commitment %s\n", tr.Len(), tr.Commitment().Hex())
		}
		if cfg.TraceOut != "" {
			if err := os.WriteFile(cfg.TraceOut, tr.Serialize(), 0o644); err != nil {
				return fmt.Errorf("write trace: %w", err)
			}
		}
	}
	if cfg.Metrics {
		if err := metrics.WriteText(a.stdout, metrics.DefaultRegistry, "cpusim"); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func writeRegisters(w io.Writer, cpu *riscv.CPU) {
	regs := cpu.Registers()
	fmt.Fprintf(w, "pc       0x%08x\n", cpu.PC())
	for i, v := range regs {
		fmt.Fprintf(w, "x%-2d %-4s 0x%08x\n", i, riscv.RegNames[i], v)
	}
}
