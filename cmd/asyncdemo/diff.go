package main

import (
	"encoding/json"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// snapshotDiff renders the field-level difference between two
// MetricsSnapshot.JSON() outputs, ascii-formatted the way a developer
// diffing two metrics dumps by hand would want to read it.
func snapshotDiff(beforeJSON, afterJSON string) (string, error) {
	differ := gojsondiff.New()
	diff, err := differ.Compare([]byte(beforeJSON), []byte(afterJSON))
	if err != nil {
		return "", err
	}
	if !diff.Modified() {
		return "(no change)", nil
	}

	var before map[string]any
	if err := json.Unmarshal([]byte(beforeJSON), &before); err != nil {
		return "", err
	}

	f := formatter.NewAsciiFormatter(before, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       true,
	})
	return f.Format(diff)
}
