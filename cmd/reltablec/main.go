/*
Command reltablec is RelTable's compiler driver (spec §4.F): thin glue
reading a `.dsl` source file, running it through the lexer, parser,
semantic pass and code generator in sequence, and writing the resulting
textual LL-IR to a `.ll` file.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.

Copyright © 2026 The RelTable Authors
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/npillmayer/schuko/tracing"

	"github.com/reltable-lang/reltablec/ast"
	"github.com/reltable-lang/reltablec/codegen"
	"github.com/reltable-lang/reltablec/parser"
	"github.com/reltable-lang/reltablec/sema"
)

var (
	flagTrace     []string
	flagEmitTypes bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "reltablec <input.dsl> <output.ll>",
	Short:         "Compile a RelTable source file to textual LL-IR",
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
	SilenceUsage:  true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return applyTraceFlags(flagTrace)
	},
	RunE: runCompile,
}

func init() {
	rootCmd.Flags().StringArrayVar(&flagTrace, "trace", nil,
		"turn on tracing for a subsystem, as key=level (e.g. reltable.sema=Debug); repeatable")
	rootCmd.Flags().BoolVar(&flagEmitTypes, "emit-types", false,
		"annotate emitted IR with source-type comments")
}

// applyTraceFlags parses each `--trace key=level` flag and sets the
// named subsystem's trace level (spec's logging/tracing configuration:
// every package selects its own tracer by a dotted key via
// tracing.Select, mirroring the teacher's gorgo packages).
func applyTraceFlags(specs []string) error {
	for _, spec := range specs {
		key, level, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --trace value %q, want key=level", spec)
		}
		tracing.Select(key).SetTraceLevel(tracing.TraceLevelFromString(level))
	}
	return nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	prog, err := parser.Parse(inputPath, src)
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}

	diags := sema.Analyze(prog, src)
	if len(diags) > 0 {
		for _, d := range diags {
			pterm.Error.Println(d.String())
		}
		return fmt.Errorf("%d semantic error(s)", len(diags))
	}

	ir, err := generate(prog)
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}

	if err := os.WriteFile(outputPath, []byte(ir), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

// generate runs the code generator, recovering the internal-compiler-
// error panics codegen raises on a well-typed tree it still cannot
// lower (spec §7: "indicate an analyzer bug and abort the driver").
func generate(prog *ast.Program) (ir string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal compiler error: %v", r)
		}
	}()
	g := codegen.NewGenerator()
	g.AnnotateTypes = flagEmitTypes
	ir = g.Generate(prog)
	return ir, nil
}
