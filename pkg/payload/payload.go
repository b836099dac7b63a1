// Package payload reads and writes the JSON error list returned with an
// unprocessable-entity response, and builds that list from server-side
// validation results.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// ErrMalformed reports a body that is not a JSON array of error entries.
var ErrMalformed = errors.New("payload: malformed error list")

// ErrUntypedEntry reports an entry skipped for having no type. The rest of
// the list is still usable.
var ErrUntypedEntry = errors.New("payload: error entry has no type")

// Error is one entry of the error list.
type Error struct {
	ContainerID string `json:"container_id"`
	ElementID   string `json:"element_to_invalidate_id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	HTMLContent string `json:"html_content,omitempty"`
}

// Decode reads an error list. The body must be a JSON array, otherwise the
// error wraps ErrMalformed and no entries are returned. Entries without a type
// cannot be keyed within a container: they are dropped, the remaining entries
// are returned, and the error joins one ErrUntypedEntry per dropped entry.
func Decode(r io.Reader) ([]Error, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("payload: read body: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformed)
	}

	var decoded []Error
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]Error, 0, len(decoded))
	var skipped []error
	for i, entry := range decoded {
		if strings.TrimSpace(entry.Type) == "" {
			skipped = append(skipped, fmt.Errorf("%w: entry %d for container %q", ErrUntypedEntry, i, entry.ContainerID))
			continue
		}
		out = append(out, entry)
	}
	return out, errors.Join(skipped...)
}

// Encode writes errs as a JSON array. A nil list is written as [].
func Encode(w io.Writer, errs []Error) error {
	if errs == nil {
		errs = []Error{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(errs); err != nil {
		return fmt.Errorf("payload: encode: %w", err)
	}
	return nil
}

// WriteUnprocessable responds with status 422 and the JSON error list.
func WriteUnprocessable(w http.ResponseWriter, errs []Error) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	return Encode(w, errs)
}

// uniqueKind returns kind, or kind-2, kind-3... when kind was already handed
// out for the same container.
func uniqueKind(seen map[string]map[string]int, containerID, kind string) string {
	kinds, ok := seen[containerID]
	if !ok {
		kinds = make(map[string]int)
		seen[containerID] = kinds
	}
	kinds[kind]++
	if n := kinds[kind]; n > 1 {
		return kind + "-" + strconv.Itoa(n)
	}
	return kind
}
