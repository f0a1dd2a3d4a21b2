package framework

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Decoded is a response body that was decoded on a best-effort basis: it is either a JSON value,
// or the raw text of a body that was not valid JSON. The zero value is an empty raw payload.
type Decoded struct {
	value  ldvalue.Value
	text   string
	isJSON bool
}

// JSON returns a Decoded holding a JSON value.
func JSON(value ldvalue.Value) Decoded {
	return Decoded{value: value, text: value.JSONString(), isJSON: true}
}

// Raw returns a Decoded holding text that is not treated as JSON.
func Raw(text string) Decoded {
	return Decoded{text: text}
}

// NoPayload is the payload of an outcome that has nothing to show.
func NoPayload() Decoded {
	return Decoded{}
}

// Decode interprets data as JSON if possible, and otherwise as raw text. It never fails.
func Decode(data []byte) Decoded {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Raw(string(data))
	}
	var value ldvalue.Value
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return Raw(string(data))
	}
	return Decoded{value: value, text: string(data), isJSON: true}
}

func (d Decoded) IsJSON() bool { return d.isJSON }

// IsEmpty is true for a raw payload that has no non-whitespace text.
func (d Decoded) IsEmpty() bool {
	return !d.isJSON && strings.TrimSpace(d.text) == ""
}

// Value returns the JSON value, or ldvalue.Null() if this is a raw payload.
func (d Decoded) Value() ldvalue.Value {
	if !d.isJSON {
		return ldvalue.Null()
	}
	return d.value
}

// Text returns the payload text as it was received.
func (d Decoded) Text() string { return d.text }

func (d Decoded) String() string {
	if d.isJSON {
		return d.value.JSONString()
	}
	return d.text
}

// Pretty returns indented JSON for a JSON payload, or the trimmed text of a raw payload.
func (d Decoded) Pretty() string {
	if !d.isJSON {
		return strings.TrimSpace(d.text)
	}
	data, err := json.MarshalIndent(d.value, "", "  ")
	if err != nil {
		return d.value.JSONString()
	}
	return string(data)
}
