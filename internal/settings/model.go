package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownField is returned when a field name is not in the catalogue.
	ErrUnknownField = errors.New("unknown configuration field")

	// ErrInvalidValue is returned when a value cannot be converted to the
	// field's type at all. Out-of-range numbers are clamped, not rejected.
	ErrInvalidValue = errors.New("invalid value for field")
)

// Model owns the single in-memory configuration record.
type Model struct {
	record Record
}

// NewModel creates a model holding the default record.
func NewModel() *Model {
	return &Model{record: Defaults()}
}

// LoadFrom replaces the record with the defaults overlaid by every field
// present in p. It never fails: numeric fields are clamped and text is
// truncated exactly as Set would do.
func (m *Model) LoadFrom(p Partial) {
	r := Defaults()

	if p.TopPosition != nil {
		r.TopPosition = *p.TopPosition
	}
	if p.MiddlePosition != nil {
		r.MiddlePosition = *p.MiddlePosition
	}
	if p.ScrollingEnabled != nil {
		r.ScrollingEnabled = *p.ScrollingEnabled
	}
	if p.ScrollingText != nil {
		r.ScrollingText = truncateText(*p.ScrollingText)
	}
	if p.UpdateInterval != nil {
		r.UpdateInterval = clampInt(FieldUpdateInterval, float64(*p.UpdateInterval))
	}
	if p.MarqueeEnabled != nil {
		r.MarqueeEnabled = *p.MarqueeEnabled
	}
	if p.LEDEnabled != nil {
		r.LEDEnabled = *p.LEDEnabled
	}
	if p.HumidityThresholdLow != nil {
		r.HumidityThresholdLow = clampFloat(FieldHumidityThresholdLow, *p.HumidityThresholdLow)
	}
	if p.HumidityThresholdHigh != nil {
		r.HumidityThresholdHigh = clampFloat(FieldHumidityThresholdHigh, *p.HumidityThresholdHigh)
	}
	if p.LEDIntensity != nil {
		r.LEDIntensity = clampInt(FieldLEDIntensity, float64(*p.LEDIntensity))
	}
	if p.LEDAnimSpeed != nil {
		r.LEDAnimSpeed = clampInt(FieldLEDAnimSpeed, float64(*p.LEDAnimSpeed))
	}
	if p.LEDAnimationMode != nil {
		r.LEDAnimationMode = *p.LEDAnimationMode
	}
	if p.LEDColorScheme != nil {
		r.LEDColorScheme = *p.LEDColorScheme
	}

	m.record = r
}

// Set stores a new value for one field. Numbers outside the field's range
// are clamped to the nearest bound, text longer than the device limit is
// truncated and enum values outside the known set are stored as given.
//
// Accepted value types: string for enum and text fields; bool, any Go
// number or "1"/"0"/"true"/"false" for booleans; any Go number or a
// numeric string for numeric fields.
func (m *Model) Set(f Field, value any) error {
	spec, ok := Lookup(string(f))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	switch spec.Kind {
	case KindEnum:
		s, ok := asString(value)
		if !ok {
			return fmt.Errorf("%w %s: want string, got %T", ErrInvalidValue, f, value)
		}
		m.setEnum(f, s)

	case KindBool:
		b, ok := asBool(value)
		if !ok {
			return fmt.Errorf("%w %s: want boolean, got %v", ErrInvalidValue, f, value)
		}
		m.setBool(f, b)

	case KindText:
		s, ok := asString(value)
		if !ok {
			return fmt.Errorf("%w %s: want string, got %T", ErrInvalidValue, f, value)
		}
		m.record.ScrollingText = truncateText(s)

	case KindInt, KindFloat:
		n, ok := asFloat(value)
		if !ok {
			return fmt.Errorf("%w %s: want number, got %v", ErrInvalidValue, f, value)
		}
		m.setNumber(f, n)
	}

	return nil
}

// Get returns the current value of a field.
func (m *Model) Get(f Field) (any, bool) {
	return m.record.Value(f)
}

// Snapshot returns a copy of the full current record.
func (m *Model) Snapshot() Record {
	return m.record
}

func (m *Model) setEnum(f Field, s string) {
	switch f {
	case FieldTopPosition:
		m.record.TopPosition = TopMode(s)
	case FieldMiddlePosition:
		m.record.MiddlePosition = MiddleMode(s)
	case FieldLEDAnimationMode:
		m.record.LEDAnimationMode = AnimationMode(s)
	case FieldLEDColorScheme:
		m.record.LEDColorScheme = ColorScheme(s)
	}
}

func (m *Model) setBool(f Field, b bool) {
	switch f {
	case FieldScrollingEnabled:
		m.record.ScrollingEnabled = b
	case FieldMarqueeEnabled:
		m.record.MarqueeEnabled = b
	case FieldLEDEnabled:
		m.record.LEDEnabled = b
	}
}

func (m *Model) setNumber(f Field, n float64) {
	switch f {
	case FieldUpdateInterval:
		m.record.UpdateInterval = clampInt(f, n)
	case FieldHumidityThresholdLow:
		m.record.HumidityThresholdLow = clampFloat(f, n)
	case FieldHumidityThresholdHigh:
		m.record.HumidityThresholdHigh = clampFloat(f, n)
	case FieldLEDIntensity:
		m.record.LEDIntensity = clampInt(f, n)
	case FieldLEDAnimSpeed:
		m.record.LEDAnimSpeed = clampInt(f, n)
	}
}

func clampInt(f Field, v float64) int {
	return int(math.Round(MustLookup(f).Clamp(v)))
}

func clampFloat(f Field, v float64) float64 {
	return MustLookup(f).Clamp(v)
}

func truncateText(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxScrollingTextLen {
		return s
	}
	return string(runes[:MaxScrollingTextLen])
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	case TopMode:
		return string(s), true
	case MiddleMode:
		return string(s), true
	case AnimationMode:
		return string(s), true
	case ColorScheme:
		return string(s), true
	}
	return "", false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return parseBoolText(b)
	}
	if n, ok := asFloat(v); ok {
		return n != 0, true
	}
	return false, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
