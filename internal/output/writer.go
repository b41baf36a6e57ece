package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/domain/upstream"
	"github.com/avado-dnp/nimbus-upstream-sync/internal/logger"
)

// sinkFileMode is used when a sink file does not exist yet.
const sinkFileMode = 0o644

// errMultilineValue is returned for values that would break the line format.
var errMultilineValue = errors.New("output value must not contain a newline")

// Writer appends outputs to every configured sink.
type Writer struct {
	// sinks are file paths; empty entries are skipped.
	sinks []string
}

// NewWriter creates a writer for the given sink paths.
func NewWriter(sinks ...string) *Writer {
	return &Writer{
		sinks: sinks,
	}
}

// Sinks returns the non-empty sink paths.
func (w *Writer) Sinks() []string {
	result := make([]string, 0, len(w.sinks))

	for _, sink := range w.sinks {
		if sink != "" {
			result = append(result, sink)
		}
	}

	return result
}

// Write appends one key=value line per output, in order, to each sink.
// Having no sinks is not an error.
func (w *Writer) Write(ctx context.Context, outputs upstream.Outputs) error {
	payload, err := Format(outputs)
	if err != nil {
		return err
	}

	for _, sink := range w.Sinks() {
		if err = appendFile(sink, payload); err != nil {
			return err
		}

		logger.DebugKV(ctx, "Outputs written", "sink", sink, "count", len(outputs))
	}

	return nil
}

// Format renders outputs as key=value lines.
func Format(outputs upstream.Outputs) ([]byte, error) {
	var builder strings.Builder

	for _, pair := range outputs {
		if strings.ContainsAny(pair.Key, "=\r\n") || strings.ContainsAny(pair.Value, "\r\n") {
			return nil, fmt.Errorf("%s: %w", pair.Key, errMultilineValue)
		}

		builder.WriteString(pair.Key)
		builder.WriteByte('=')
		builder.WriteString(pair.Value)
		builder.WriteByte('\n')
	}

	return []byte(builder.String()), nil
}

func appendFile(path string, payload []byte) error {
	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, sinkFileMode)
	if err != nil {
		return fmt.Errorf("open output sink: %w", err)
	}

	if _, err = file.Write(payload); err != nil {
		_ = file.Close()
		return fmt.Errorf("write output sink %s: %w", path, err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close output sink %s: %w", path, err)
	}

	return nil
}
