package claude

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// resultRecord is the terminal event of a streamed invocation. Only the
// fields the adapter consumes are mapped.
type resultRecord struct {
	Type         string   `json:"type"`
	Result       string   `json:"result"`
	IsError      bool     `json:"is_error"`
	SessionID    string   `json:"session_id"`
	TotalCostUSD *float64 `json:"total_cost_usd"`
	DurationMS   *int64   `json:"duration_ms"`
}

// parseStream reads a line-delimited JSON file and returns every record plus
// the last record of type "result", or nil when the stream has none.
func parseStream(path string) ([]json.RawMessage, *resultRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read stream output: %w", err)
	}

	var records []json.RawMessage
	for _, line := range bytes.Split(raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		records = append(records, json.RawMessage(bytes.Clone(line)))
	}

	for i := len(records) - 1; i >= 0; i-- {
		var rec resultRecord
		if err := json.Unmarshal(records[i], &rec); err != nil {
			continue
		}
		if rec.Type == "result" {
			return records, &rec, nil
		}
	}
	return records, nil, nil
}

// convertToJSON rewrites a .jsonl stream file as a pretty-printed JSON array
// next to it, returning the new path.
func convertToJSON(jsonlPath string) (string, error) {
	records, _, err := parseStream(jsonlPath)
	if err != nil {
		return "", err
	}

	jsonPath := strings.TrimSuffix(jsonlPath, ".jsonl") + ".json"
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode stream records: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write json output: %w", err)
	}
	return jsonPath, nil
}
