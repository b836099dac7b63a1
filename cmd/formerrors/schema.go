package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formerrors/pkg/payload"
)

var schemaErrorsCmd = &cobra.Command{
	Use:   "schema-errors <openapi.yaml> <operation-id> <values.json>",
	Short: "Validate values against an operation request body and print the error payload",
	Long: `Loads an OpenAPI document, picks the JSON request body schema of the
operation and validates the values file against it. Every schema violation
becomes an entry of the 422 error payload printed on stdout.`,
	Args: cobra.ExactArgs(3),
	RunE: runSchemaErrors,
}

func runSchemaErrors(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read openapi document: %w", err)
	}
	schema, err := payload.OperationSchema(cmd.Context(), raw, args[1])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("read values: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse values json: %w", err)
	}

	errs, err := payload.FromSchema(schema, values)
	if err != nil {
		return err
	}
	logger.Info("schema validated",
		zap.String("operation", args[1]),
		zap.Int("errors", len(errs)),
	)
	return writeOutput(cmd, func(w io.Writer) error {
		return payload.Encode(w, errs)
	})
}
