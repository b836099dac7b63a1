package payload

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrOperationNotFound reports an operation id absent from a document.
var ErrOperationNotFound = errors.New("payload: operation not found")

// FromSchema validates values against schema and turns every schema failure
// into an error entry. The kind is the failing schema keyword; element and
// container ids come from the field name through the configured functions.
// Failures at the document root become form level entries.
func FromSchema(schema *openapi3.Schema, values map[string]any, options ...Option) ([]Error, error) {
	if schema == nil {
		return nil, errors.New("payload: schema is required")
	}
	cfg := newConfig(options)

	if values == nil {
		values = map[string]any{}
	}
	err := schema.VisitJSON(values, openapi3.MultiErrors())
	if err == nil {
		return nil, nil
	}

	seen := make(map[string]map[string]int)
	var out []Error
	for _, failure := range flattenSchemaErrors(err) {
		kind, name, message := "schema", "", failure.Error()
		var schemaErr *openapi3.SchemaError
		if errors.As(failure, &schemaErr) {
			if schemaErr.SchemaField != "" {
				kind = schemaErr.SchemaField
			}
			if schemaErr.Reason != "" {
				message = schemaErr.Reason
			}
			name = strings.Join(schemaErr.JSONPointer(), ".")
		}

		entry := Error{Message: message}
		if name != "" {
			entry.ElementID = cfg.idFunc(name)
			entry.ContainerID = cfg.containerIDFunc(name)
		}
		entry.Type = uniqueKind(seen, entry.ContainerID, kind)
		out = append(out, entry)
	}
	return out, nil
}

func flattenSchemaErrors(err error) []error {
	multi, ok := err.(openapi3.MultiError)
	if !ok {
		return []error{err}
	}
	var out []error
	for _, item := range multi {
		out = append(out, flattenSchemaErrors(item)...)
	}
	return out
}

// OperationSchema loads an OpenAPI document and returns the JSON request body
// schema of the operation. Operations without an id are addressed as
// "method:path", lower-cased method.
func OperationSchema(ctx context.Context, raw []byte, operationID string) (*openapi3.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("payload: openapi document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	api, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("payload: load openapi document: %w", err)
	}
	if api.Paths == nil {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
	}

	items := api.Paths.Map()
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		item := items[path]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if id != operationID {
				continue
			}
			return requestSchema(op)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
}

func requestSchema(op *openapi3.Operation) (*openapi3.Schema, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("payload: operation %q has no request body", op.OperationID)
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value, nil
		}
	}
	return nil, fmt.Errorf("payload: operation %q has no request body schema", op.OperationID)
}
