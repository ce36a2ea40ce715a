// Package cmd implements the demo CLI (generate/validate/check) described
// as an ambient, non-core collaborator surface: a thin YAML-backed
// RegistryCollaborator/SpecCollaborator/ProtocolCollaborator plus Cobra
// commands, styled after the teacher's own cmd/ package.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cottand/typegen/internal/log"
	"github.com/cottand/typegen/typeast"
)

var RootCmd = &cobra.Command{
	Use:          "typegen",
	Short:        "Generate, validate and spec-check values against declarative structural types",
	SilenceUsage: true,
}

var (
	registryPath *string
	logLevel     *int
)

func init() {
	registryPath = RootCmd.PersistentFlags().StringP("registry", "r", "registry.yaml", "path to a YAML type registry file")
	logLevel = RootCmd.PersistentFlags().IntP("log-level", "l", int(slog.LevelWarn), "log level")

	RootCmd.AddCommand(GenerateCmd)
	RootCmd.AddCommand(ValidateCmd)
	RootCmd.AddCommand(CheckCmd)
}

func loadRegistry() (*typeast.Registry, *fileRegistry, error) {
	log.SetLevel(slog.Level(*logLevel))
	fr, err := LoadFileRegistry(*registryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load registry: %w", err)
	}
	return typeast.NewRegistry(fr), fr, nil
}
