// Package output writes finished analyses to per-subject result files.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mingshi/bazi-engine/internal/domain"
)

// fallbackName labels results whose input carries no subject name.
const fallbackName = "未知"

// Writer persists result JSON under a per-subject directory. Write failures
// are reported to the caller but never touch the in-memory result.
type Writer struct {
	baseDir string
	log     zerolog.Logger
}

// NewWriter creates a writer rooted at baseDir.
func NewWriter(baseDir string, log zerolog.Logger) *Writer {
	if baseDir == "" {
		baseDir = "output"
	}
	return &Writer{
		baseDir: baseDir,
		log:     log.With().Str("module", "output").Logger(),
	}
}

// Write saves the analysis as pretty JSON and returns the file path. The
// directory is named <name>_<yyyymmdd>; CJK text is written as-is, not
// escaped.
func (w *Writer) Write(analysis *domain.ChartAnalysis) (string, error) {
	name := analysis.Input.Name
	if name == "" {
		name = fallbackName
	}

	dirName := fmt.Sprintf("%s_%d%02d%02d", name,
		analysis.Input.Year, analysis.Input.Month, analysis.Input.Day)
	dir := filepath.Join(w.baseDir, dirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := MarshalPretty(analysis)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "result.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}

	w.log.Info().Str("path", path).Msg("Result saved")
	return path, nil
}

// MarshalPretty renders two-space-indented JSON without HTML escaping, so
// CJK and punctuation survive byte-for-byte. Map keys marshal sorted, which
// keeps output canonical for identical inputs.
func MarshalPretty(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode result JSON: %w", err)
	}
	return buf.Bytes(), nil
}
