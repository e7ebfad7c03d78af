package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

const maxPayloadWidth = 60

// formatPayload renders a decoded payload on one table cell.
func formatPayload(v any) string {
	var s string
	switch value := v.(type) {
	case nil:
		return "(null)"
	case string:
		s = value
	default:
		data, err := json.Marshal(value)
		if err != nil {
			s = fmt.Sprint(value)
		} else {
			s = string(data)
		}
	}
	if r := []rune(s); len(r) > maxPayloadWidth {
		s = string(r[:maxPayloadWidth-1]) + "…"
	}
	return s
}
