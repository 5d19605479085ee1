package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LabelMap translates integer-encoded classes into disposition labels.
// Training encoded dispositions in this order.
var LabelMap = map[int64]string{
	0: "CANDIDATE",
	1: "CONFIRMED",
	2: "FALSE POSITIVE",
}

// Class is one class value of a fitted classifier: an integer code or a string.
type Class struct {
	raw string
	num bool
	n   int64
}

// IntClass returns an integer-encoded class.
func IntClass(n int64) Class { return Class{raw: strconv.FormatInt(n, 10), num: true, n: n} }

// StringClass returns a string class.
func StringClass(s string) Class { return Class{raw: s} }

// String returns the class value as text.
func (c Class) String() string { return c.raw }

// Int returns the integer code and whether the class is integer-encoded.
func (c Class) Int() (int64, bool) { return c.n, c.num }

func (c *Class) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = StringClass(s)
		return nil
	}
	s := string(b)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*c = IntClass(n)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		*c = Class{raw: s}
		return nil
	}
	return fmt.Errorf("class must be a number or a string, got %s", s)
}

func (c Class) MarshalJSON() ([]byte, error) {
	if c.num {
		return []byte(c.raw), nil
	}
	return json.Marshal(c.raw)
}

// resolveLabels maps classes to readable labels. Integer outputs go through
// LabelMap (unknown codes are stringified); any non-integer class makes the
// whole output textual, so every class is passed through as-is.
func resolveLabels(classes []Class) []string {
	allInt := len(classes) > 0
	for _, c := range classes {
		if !c.num {
			allInt = false
			break
		}
	}
	out := make([]string, len(classes))
	for i, c := range classes {
		if allInt {
			if l, ok := LabelMap[c.n]; ok {
				out[i] = l
				continue
			}
		}
		out[i] = c.raw
	}
	return out
}
