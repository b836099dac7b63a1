package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <page.html> <errors.json>",
	Short: "Merge a 422 error payload into a form",
	Long: `Attaches error handling to the target form and merges the error list
as if the server had answered the submission with 422 Unprocessable Content.

The payload is a JSON array of objects with container_id,
element_to_invalidate_id, type, message and an optional html_content.`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
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

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()

	resp := &http.Response{
		StatusCode: http.StatusUnprocessableEntity,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(f),
	}
	if err := h.ApplyResponse(cmd.Context(), resp); err != nil {
		return fmt.Errorf("apply payload: %w", err)
	}
	return writeOutput(cmd, doc.Render)
}
