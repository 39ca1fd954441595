package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayush-os/cpu-sim/loader"
	"github.com/ayush-os/cpu-sim/riscv"
)

func (a *app) disasmCommand() *cobra.Command {
	var (
		format string
		base   uint32
	)
	cmd := &cobra.Command{
		Use:   "disasm [flags] IMAGE",
		Short: "Disassemble a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loader.ParseFormat(format)
			if err != nil {
				return err
			}
			img, err := loader.Open(args[0], f, base)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, seg := range img.Segments {
				if i > 0 {
					fmt.Fprintln(out)
				}
				for _, line := range riscv.Disassemble(seg.Data, seg.Addr) {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "auto", "image format (auto, raw, hex, elf)")
	cmd.Flags().Var(&uint32Value{&base}, "base", "load address for raw and hex images")
	return cmd
}
