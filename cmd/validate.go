package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cottand/typegen/typeast"
	"github.com/cottand/typegen/validate"
)

var ValidateCmd = &cobra.Command{
	Use:          "validate <module> <type> <value>",
	Short:        "Check whether a value inhabits a declarative structural type",
	RunE:         runValidate,
	Args:         cobra.ExactArgs(3),
	SilenceUsage: true,
}

func runValidate(cmd *cobra.Command, args []string) error {
	reg, fr, err := loadRegistry()
	if err != nil {
		return err
	}

	builder := validate.NewBuilder(reg, fr)
	handle, err := builder.FromType(args[0], args[1], nil)
	if err != nil {
		return fmt.Errorf("could not build validator for %s.%s: %w", args[0], args[1], err)
	}

	value, err := parseValue(args[2])
	if err != nil {
		return fmt.Errorf("could not parse value: %w", err)
	}

	if handle.Check(value) {
		fmt.Println("ok: value inhabits the type")
		return nil
	}
	fmt.Println("error: value does not inhabit the type")
	return fmt.Errorf("membership check failed")
}

// parseValue converts a YAML scalar/sequence/mapping literal into this
// module's value representation (typeast's Atom, TupleValue, etc., in
// values.go), heuristically: a leading colon marks an atom (e.g. ":ok"),
// YAML sequences become []any, and YAML mappings with string keys become
// map[any]any whose keys are always atoms (a leading colon on a key is
// stripped); their values go through this same conversion. There is no CLI-level syntax for
// TupleValue, ConsValue or Bits — a value containing those shapes must be
// checked via the library API directly, not this command.
func parseValue(raw string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return convertValue(v), nil
}

func convertValue(v any) any {
	switch t := v.(type) {
	case string:
		if strings.HasPrefix(t, ":") {
			return typeast.Atom(strings.TrimPrefix(t, ":"))
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = convertValue(e)
		}
		return out
	case map[string]any:
		out := make(map[any]any, len(t))
		for k, val := range t {
			out[typeast.Atom(strings.TrimPrefix(k, ":"))] = convertValue(val)
		}
		return out
	default:
		return t
	}
}
