// Command cpusim runs RV32I programs on the functional simulator.
//
// Usage:
//
//	cpusim run [flags] IMAGE
//	cpusim disasm [flags] IMAGE
//	cpusim version
//
// The run command exits with the program's exit code (a0 of ecall 93,
// truncated to 8 bits), with 0 when the program stops at ebreak, and with 1
// when the simulation fails.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries the output streams and the exit code chosen by a command.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	exitCode int
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return a.exitCode
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cpusim",
		Short:         "RV32I functional simulator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(a.runCommand(), a.disasmCommand(), a.versionCommand())
	return root
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cpusim %s (commit %s)\n", version, commit)
		},
	}
}
