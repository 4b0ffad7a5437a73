package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tempsense/tempsense/internal/display"
)

var errNoObject = errors.New("no JSON object found in response")

// ExtractJSONObject returns the first complete JSON object in data. Some
// firmware builds append stray bytes after the object; those are dropped.
func ExtractJSONObject(data []byte) ([]byte, error) {
	start := -1
	for i, b := range data {
		if b == '{' {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, errNoObject
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(data); i++ {
		b := data[i]

		if escaped {
			escaped = false
			continue
		}
		if inString && b == '\\' {
			escaped = true
			continue
		}
		if b == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch b {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return data[start : i+1], nil
			}
		}
	}

	return nil, fmt.Errorf("unterminated JSON object (depth %d at end of input)", depth)
}

// decodeSample reads {temperature, humidity}. Each reading that is absent,
// null, non-numeric or not finite becomes 0.
func decodeSample(data []byte) (display.Sample, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return display.Sample{}, err
	}
	return display.Sample{
		Temperature: lenientNumber(raw["temperature"]),
		Humidity:    lenientNumber(raw["humidity"]),
	}, nil
}

func lenientNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
