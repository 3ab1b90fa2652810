// SPDX-License-Identifier: Apache-2.0

package json

import (
	"bytes"
	stdjson "encoding/json"

	json "github.com/bytedance/sonic"
)

func Unmarshal(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Indent reformats already encoded JSON without changing the key order.
func Indent(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, b, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
