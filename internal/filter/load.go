package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ErrPatternFile is returned for pattern files that are neither an array nor an object with "exclude".
var ErrPatternFile = errors.New("malformed pattern file")

// patternDocument is the object form of a pattern file.
type patternDocument struct {
	Exclude []string `json:"exclude"`
}

// LoadPatterns reads exclude patterns from a JSON file that may carry comments and trailing commas.
//
// The file holds either a bare array of patterns or an object with an "exclude" array:
//
//	["*.psd", "raw/*"]
//	{"exclude": ["*.psd", "raw/*"]}
func LoadPatterns(path string) ([]string, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // --exclude-from is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	doc := bytes.TrimSpace(jsonc.ToJSON(raw))

	if bytes.HasPrefix(doc, []byte("{")) {
		var object patternDocument

		if err := json.Unmarshal(doc, &object); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrPatternFile, path, err)
		}

		return object.Exclude, nil
	}

	var patterns []string

	if err := json.Unmarshal(doc, &patterns); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrPatternFile, path, err)
	}

	return patterns, nil
}
