package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formerrors/pkg/dom"
)

var checkSubmit bool

var checkCmd = &cobra.Command{
	Use:   "check <page.html>",
	Short: "Reconcile the initial error state of every form in a page",
	Long: `Attaches error handling to every form of the page: forms are marked
novalidate and pre-filled controls are reconciled the way they are on first
paint. With --submit every form also goes through a submit pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkSubmit, "submit", false, "run a submit pass on every form")
}

func runCheck(cmd *cobra.Command, args []string) error {
	doc, err := loadPage(args[0])
	if err != nil {
		return err
	}
	engine, err := newEngine()
	if err != nil {
		return err
	}

	for _, form := range doc.Forms() {
		h, err := attach(doc, form, engine)
		if err != nil {
			return err
		}
		if !checkSubmit {
			continue
		}
		result, err := h.Submit()
		if err != nil {
			return err
		}
		logger.Info("form checked",
			zap.String("form", dom.AttrOr(form, "id", "")),
			zap.Bool("valid", result.Valid),
			zap.String("focus", dom.AttrOr(result.Focus, "id", "")),
		)
	}
	return writeOutput(cmd, doc.Render)
}
