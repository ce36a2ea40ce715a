package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cottand/typegen/genbuild"
)

var GenerateCmd = &cobra.Command{
	Use:          "generate <module> <type>",
	Short:        "Draw sample values from a declarative structural type",
	RunE:         runGenerate,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
}

var sampleCount *int

func init() {
	sampleCount = GenerateCmd.Flags().IntP("count", "n", 5, "number of values to draw")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	reg, fr, err := loadRegistry()
	if err != nil {
		return err
	}

	builder := genbuild.NewBuilder(reg, fr)
	handle, err := builder.FromType(args[0], args[1], nil)
	if err != nil {
		return fmt.Errorf("could not build generator for %s.%s: %w", args[0], args[1], err)
	}

	for seed := uint64(0); seed < uint64(*sampleCount); seed++ {
		fmt.Printf("%v\n", handle.Example(seed))
	}
	return nil
}
