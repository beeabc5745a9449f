package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// parseKeyValues turns key=value arguments into search filters
func parseKeyValues(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", arg)
		}
		values[key] = value
	}
	return values, nil
}
