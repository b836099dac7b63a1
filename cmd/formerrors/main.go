package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	vocabularyPath string
	templatePath   string
	outputPath     string
	formID         string
	verbose        bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "formerrors",
	Short: "Reconcile form error state in HTML documents",
	Long: `formerrors renders the error state of HTML forms.

It mirrors constraint validation into the error containers linked to each
control, merges 422 error payloads returned by a server and can fill a form
interactively while showing the messages a browser user would see.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&vocabularyPath, "vocabulary", "", "YAML or TOML file overriding the attribute vocabulary")
	flags.StringVar(&templatePath, "template", "", "entry template (.tmpl renders through pongo2, anything else is HTML markup)")
	flags.StringVarP(&outputPath, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&formID, "form", "", "id of the form to target (first form if empty)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(checkCmd, applyCmd, schemaErrorsCmd, fillCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
