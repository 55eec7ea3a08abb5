// Command benchcore runs registered protocols from a YAML manifest and
// prints the resulting instruction document as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"benchcore/internal/harness"
	"benchcore/pkg/plate"
)

var (
	verbose      bool
	manifestPath string
	outPath      string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "benchcore",
	Short: "Author liquid-handling protocols and compile them to instructions",
	Long: `benchcore compiles declarative protocol descriptions into validated,
unit-correct, capacity-bounded instruction documents.

A manifest names a registered protocol function, the containers it works on,
and its parameters; the run subcommand executes it and emits the document.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a protocol manifest and emit its instruction document",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := harness.LoadManifest(manifestPath)
		if err != nil {
			return err
		}
		doc, err := harness.Execute(manifest, logger)
		if err != nil {
			return err
		}
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		raw = append(raw, '\n')
		if outPath == "" || outPath == "-" {
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		}
		if err := os.WriteFile(outPath, raw, 0o644); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		logger.Info("wrote document", zap.String("path", outPath))
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the built-in container types",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-12s %-6s %-5s %-10s %-10s %s\n", "SHORTNAME", "WELLS", "COLS", "MAX", "DEAD", "COVERS/SEALS")
		for _, t := range plate.Types() {
			fmt.Fprintf(w, "%-12s %-6d %-5d %-10s %-10s %s\n",
				t.Shortname, t.WellCount, t.ColCount, t.TrueMaxVolume, t.DeadVolume,
				coverSummary(t))
		}
		return nil
	},
}

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List the registered protocol functions",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range harness.RegisteredProtocols() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func coverSummary(t plate.ContainerType) string {
	out := ""
	for _, lid := range t.CoverTypes {
		if out != "" {
			out += ","
		}
		out += lid
	}
	for _, seal := range t.SealTypes {
		if out != "" {
			out += ","
		}
		out += seal + " (seal)"
	}
	if out == "" {
		return "-"
	}
	return out
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	runCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to the protocol manifest (required)")
	runCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the document here instead of stdout")
	_ = runCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(runCmd, catalogCmd, protocolsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
