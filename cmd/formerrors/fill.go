package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formerrors/pkg/dom"
	"github.com/goliatone/go-formerrors/pkg/tui"
)

// promptDriver is swapped in tests.
var promptDriver tui.PromptDriver

var fillCmd = &cobra.Command{
	Use:   "fill <page.html>",
	Short: "Fill a form interactively",
	Long: `Prompts for every control of the target form. Answers are written into
the page and reconciled; invalid answers are rejected with the messages the
page would display. The filled page is written after a final submit pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func runFill(cmd *cobra.Command, args []string) error {
	doc, err := loadPage(args[0])
	if err != nil {
		return err
	}
	form, err := targetForm(doc)
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}
	h, err := attach(doc, form, engine)
	if err != nil {
		return err
	}

	driver := promptDriver
	if driver == nil {
		driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
	}
	filler := tui.NewFiller(engine,
		tui.WithPromptDriver(driver),
		tui.WithLogger(logger),
	)
	if err := filler.Fill(cmd.Context(), doc, form); err != nil {
		return err
	}

	result, err := h.Submit()
	if err != nil {
		return err
	}
	logger.Info("form filled",
		zap.String("form", dom.AttrOr(form, "id", "")),
		zap.Bool("valid", result.Valid),
	)
	return writeOutput(cmd, doc.Render)
}
