package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeJSONLine 输出一行 JSON（机器可读，日志走 stderr）
func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}
