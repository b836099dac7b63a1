package vocabulary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("vocabulary: unsupported file format")

// LoadFile reads an override file from disk. See Parse for the format rules.
func LoadFile(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads an override file from fsys.
func LoadFS(fsys fs.FS, path string) (Vocabulary, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes YAML (.yaml/.yml) or TOML (.toml) content, picking the
// decoder from the file extension. Omitted keys keep the canonical names.
func Parse(data []byte, path string) (Vocabulary, error) {
	var v Vocabulary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &v); err != nil {
			return Vocabulary{}, fmt.Errorf("vocabulary: decode yaml %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &v); err != nil {
			return Vocabulary{}, fmt.Errorf("vocabulary: decode toml %s: %w", path, err)
		}
	default:
		return Vocabulary{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return v.trimmed().WithDefaults(), nil
}

func (v Vocabulary) trimmed() Vocabulary {
	for _, field := range []*string{
		&v.DescribedBy, &v.ErrorContainer, &v.ErrorType, &v.Preserve, &v.Visible,
		&v.ErrorMessage, &v.Invalid, &v.IsInvalid, &v.InitialErrors,
		&v.LiveValidation, &v.ChangeValidation, &v.FocusoutValidation,
		&v.SkipValidation, &v.Mirror,
	} {
		*field = strings.ToLower(strings.TrimSpace(*field))
	}
	return v
}
