package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cottand/typegen/internal/dynfunc"
	"github.com/cottand/typegen/speccheck"
)

var CheckCmd = &cobra.Command{
	Use:          "check <module> <function> <arity> <source-file>",
	Short:        "Run a bounded property-based campaign against a function's declared spec",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(4),
	SilenceUsage: true,
}

var checkFuncName *string

func init() {
	checkFuncName = CheckCmd.Flags().StringP("entry", "e", "", "exported function expression to evaluate in source-file (defaults to the function argument)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	module, name, arityArg, srcPath := args[0], args[1], args[2], args[3]
	var arity int
	if _, err := fmt.Sscanf(arityArg, "%d", &arity); err != nil {
		return fmt.Errorf("arity must be an integer, got %q", arityArg)
	}

	reg, fr, err := loadRegistry()
	if err != nil {
		return err
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("could not read source file: %w", err)
	}

	entry := *checkFuncName
	if entry == "" {
		entry = name
	}
	callable, err := dynfunc.Load(string(src), entry)
	if err != nil {
		return fmt.Errorf("could not load callable: %w", err)
	}

	checker := speccheck.NewChecker(reg, fr, fr)
	result, err := checker.Validate(module, name, arity, callable)
	if err != nil {
		return fmt.Errorf("spec check failed: %w", err)
	}

	for _, ov := range result.Overloads {
		status := "ok"
		if !ov.Ok {
			status = "error"
		}
		fmt.Printf("[%s] %s(%v) :: %s — %s\n", status, name, ov.ArgTypes, ov.Return, ov.Message)
	}
	if !result.Ok {
		return fmt.Errorf("one or more overloads failed")
	}
	fmt.Println("ok")
	return nil
}
