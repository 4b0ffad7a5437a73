package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is the complete configuration record stored on the device.
// JSON names match the device API exactly.
type Record struct {
	TopPosition           TopMode       `json:"topPosition" yaml:"top_position"`
	MiddlePosition        MiddleMode    `json:"middlePosition" yaml:"middle_position"`
	ScrollingEnabled      bool          `json:"scrollingEnabled" yaml:"scrolling_enabled"`
	ScrollingText         string        `json:"scrollingText" yaml:"scrolling_text"`
	UpdateInterval        int           `json:"updateInterval" yaml:"update_interval"`
	MarqueeEnabled        bool          `json:"marqueeEnabled" yaml:"marquee_enabled"`
	LEDEnabled            bool          `json:"ledEnabled" yaml:"led_enabled"`
	HumidityThresholdLow  float64       `json:"humidityThresholdLow" yaml:"humidity_threshold_low"`
	HumidityThresholdHigh float64       `json:"humidityThresholdHigh" yaml:"humidity_threshold_high"`
	LEDIntensity          int           `json:"ledIntensity" yaml:"led_intensity"`
	LEDAnimSpeed          int           `json:"ledAnimSpeed" yaml:"led_anim_speed"`
	LEDAnimationMode      AnimationMode `json:"ledAnimationMode" yaml:"led_animation_mode"`
	LEDColorScheme        ColorScheme   `json:"ledColorScheme" yaml:"led_color_scheme"`
}

// Default values, taken from the device's own configuration page.
const (
	DefaultScrollingText         = "HUMIDITY AND TEMPERATURE DEFAULT"
	DefaultUpdateInterval        = 20
	DefaultHumidityThresholdLow  = 33.3
	DefaultHumidityThresholdHigh = 66.6
	DefaultLEDIntensity          = 100
	DefaultLEDAnimSpeed          = 3000
)

// Defaults returns a record with every field at its default value.
func Defaults() Record {
	return Record{
		TopPosition:           TopTempBoth,
		MiddlePosition:        MiddleTempC,
		ScrollingEnabled:      true,
		ScrollingText:         DefaultScrollingText,
		UpdateInterval:        DefaultUpdateInterval,
		MarqueeEnabled:        true,
		LEDEnabled:            true,
		HumidityThresholdLow:  DefaultHumidityThresholdLow,
		HumidityThresholdHigh: DefaultHumidityThresholdHigh,
		LEDIntensity:          DefaultLEDIntensity,
		LEDAnimSpeed:          DefaultLEDAnimSpeed,
		LEDAnimationMode:      AnimStatic,
		LEDColorScheme:        DefaultColorScheme,
	}
}

// Value returns the current value of a field as a plain Go value
// (string, bool, int or float64).
func (r Record) Value(f Field) (any, bool) {
	switch f {
	case FieldTopPosition:
		return string(r.TopPosition), true
	case FieldMiddlePosition:
		return string(r.MiddlePosition), true
	case FieldScrollingEnabled:
		return r.ScrollingEnabled, true
	case FieldScrollingText:
		return r.ScrollingText, true
	case FieldUpdateInterval:
		return r.UpdateInterval, true
	case FieldMarqueeEnabled:
		return r.MarqueeEnabled, true
	case FieldLEDEnabled:
		return r.LEDEnabled, true
	case FieldHumidityThresholdLow:
		return r.HumidityThresholdLow, true
	case FieldHumidityThresholdHigh:
		return r.HumidityThresholdHigh, true
	case FieldLEDIntensity:
		return r.LEDIntensity, true
	case FieldLEDAnimSpeed:
		return r.LEDAnimSpeed, true
	case FieldLEDAnimationMode:
		return string(r.LEDAnimationMode), true
	case FieldLEDColorScheme:
		return string(r.LEDColorScheme), true
	}
	return nil, false
}

// FormatValue renders a field value the way the CLI and dashboard show it.
func (r Record) FormatValue(f Field) string {
	v, ok := r.Value(f)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case bool:
		if val {
			return "on"
		}
		return "off"
	case float64:
		return strconv.FormatFloat(val, 'f', 1, 64)
	case int:
		return strconv.Itoa(val)
	case string:
		return val
	}
	return fmt.Sprint(v)
}

// Partial is a configuration record in which any field may be missing.
// It is what GET /getConfig yields: firmware versions may omit fields and
// encode booleans as 1/0.
type Partial struct {
	TopPosition           *TopMode
	MiddlePosition        *MiddleMode
	ScrollingEnabled      *bool
	ScrollingText         *string
	UpdateInterval        *int
	MarqueeEnabled        *bool
	LEDEnabled            *bool
	HumidityThresholdLow  *float64
	HumidityThresholdHigh *float64
	LEDIntensity          *int
	LEDAnimSpeed          *int
	LEDAnimationMode      *AnimationMode
	LEDColorScheme        *ColorScheme
}

// Partial converts a full record into a partial with every field present.
func (r Record) Partial() Partial {
	return Partial{
		TopPosition:           &r.TopPosition,
		MiddlePosition:        &r.MiddlePosition,
		ScrollingEnabled:      &r.ScrollingEnabled,
		ScrollingText:         &r.ScrollingText,
		UpdateInterval:        &r.UpdateInterval,
		MarqueeEnabled:        &r.MarqueeEnabled,
		LEDEnabled:            &r.LEDEnabled,
		HumidityThresholdLow:  &r.HumidityThresholdLow,
		HumidityThresholdHigh: &r.HumidityThresholdHigh,
		LEDIntensity:          &r.LEDIntensity,
		LEDAnimSpeed:          &r.LEDAnimSpeed,
		LEDAnimationMode:      &r.LEDAnimationMode,
		LEDColorScheme:        &r.LEDColorScheme,
	}
}

// Over returns base with every field present in p replaced by p's value.
func (p Partial) Over(base Record) Partial {
	out := base.Partial()
	if p.TopPosition != nil {
		out.TopPosition = p.TopPosition
	}
	if p.MiddlePosition != nil {
		out.MiddlePosition = p.MiddlePosition
	}
	if p.ScrollingEnabled != nil {
		out.ScrollingEnabled = p.ScrollingEnabled
	}
	if p.ScrollingText != nil {
		out.ScrollingText = p.ScrollingText
	}
	if p.UpdateInterval != nil {
		out.UpdateInterval = p.UpdateInterval
	}
	if p.MarqueeEnabled != nil {
		out.MarqueeEnabled = p.MarqueeEnabled
	}
	if p.LEDEnabled != nil {
		out.LEDEnabled = p.LEDEnabled
	}
	if p.HumidityThresholdLow != nil {
		out.HumidityThresholdLow = p.HumidityThresholdLow
	}
	if p.HumidityThresholdHigh != nil {
		out.HumidityThresholdHigh = p.HumidityThresholdHigh
	}
	if p.LEDIntensity != nil {
		out.LEDIntensity = p.LEDIntensity
	}
	if p.LEDAnimSpeed != nil {
		out.LEDAnimSpeed = p.LEDAnimSpeed
	}
	if p.LEDAnimationMode != nil {
		out.LEDAnimationMode = p.LEDAnimationMode
	}
	if p.LEDColorScheme != nil {
		out.LEDColorScheme = p.LEDColorScheme
	}
	return out
}

// Present returns the JSON names of the fields set in p, in catalogue order.
func (p Partial) Present() []Field {
	checks := []struct {
		field Field
		set   bool
	}{
		{FieldTopPosition, p.TopPosition != nil},
		{FieldMiddlePosition, p.MiddlePosition != nil},
		{FieldScrollingEnabled, p.ScrollingEnabled != nil},
		{FieldScrollingText, p.ScrollingText != nil},
		{FieldUpdateInterval, p.UpdateInterval != nil},
		{FieldMarqueeEnabled, p.MarqueeEnabled != nil},
		{FieldLEDEnabled, p.LEDEnabled != nil},
		{FieldHumidityThresholdLow, p.HumidityThresholdLow != nil},
		{FieldHumidityThresholdHigh, p.HumidityThresholdHigh != nil},
		{FieldLEDIntensity, p.LEDIntensity != nil},
		{FieldLEDAnimSpeed, p.LEDAnimSpeed != nil},
		{FieldLEDAnimationMode, p.LEDAnimationMode != nil},
		{FieldLEDColorScheme, p.LEDColorScheme != nil},
	}
	var fields []Field
	for _, c := range checks {
		if c.set {
			fields = append(fields, c.field)
		}
	}
	return fields
}

// UnmarshalJSON decodes a device configuration object field by field.
// The payload must be a JSON object; a field whose value has an unusable
// shape is left unset rather than failing the whole decode.
func (p *Partial) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("configuration payload is not a JSON object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("configuration payload is null")
	}

	*p = Partial{}

	if s, ok := decodeString(raw[string(FieldTopPosition)]); ok && s != "" {
		v := TopMode(s)
		p.TopPosition = &v
	}
	if s, ok := decodeString(raw[string(FieldMiddlePosition)]); ok && s != "" {
		v := MiddleMode(s)
		p.MiddlePosition = &v
	}
	if b, ok := decodeBool(raw[string(FieldScrollingEnabled)]); ok {
		p.ScrollingEnabled = &b
	}
	if s, ok := decodeString(raw[string(FieldScrollingText)]); ok {
		p.ScrollingText = &s
	}
	if n, ok := decodeInt(raw[string(FieldUpdateInterval)], FieldUpdateInterval); ok {
		p.UpdateInterval = &n
	}
	if b, ok := decodeBool(raw[string(FieldMarqueeEnabled)]); ok {
		p.MarqueeEnabled = &b
	}
	if b, ok := decodeBool(raw[string(FieldLEDEnabled)]); ok {
		p.LEDEnabled = &b
	}
	if f, ok := decodeFloat(raw[string(FieldHumidityThresholdLow)]); ok {
		p.HumidityThresholdLow = &f
	}
	if f, ok := decodeFloat(raw[string(FieldHumidityThresholdHigh)]); ok {
		p.HumidityThresholdHigh = &f
	}
	if n, ok := decodeInt(raw[string(FieldLEDIntensity)], FieldLEDIntensity); ok {
		p.LEDIntensity = &n
	}
	if n, ok := decodeInt(raw[string(FieldLEDAnimSpeed)], FieldLEDAnimSpeed); ok {
		p.LEDAnimSpeed = &n
	}
	if s, ok := decodeString(raw[string(FieldLEDAnimationMode)]); ok && s != "" {
		v := AnimationMode(s)
		p.LEDAnimationMode = &v
	}
	if s, ok := decodeString(raw[string(FieldLEDColorScheme)]); ok && s != "" {
		v := ColorScheme(s)
		p.LEDColorScheme = &v
	}

	return nil
}

// DecodePartial parses a device configuration object.
func DecodePartial(data []byte) (Partial, error) {
	var p Partial
	if err := json.Unmarshal(data, &p); err != nil {
		return Partial{}, err
	}
	return p, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	if isAbsent(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// decodeInt clamps to the field's bounds before converting, so values
// beyond the int range saturate instead of wrapping.
func decodeInt(raw json.RawMessage, field Field) (int, bool) {
	f, ok := decodeFloat(raw)
	if !ok {
		return 0, false
	}
	spec := MustLookup(field)
	f = math.Max(spec.Min, math.Min(spec.Max, f))
	return int(math.Round(f)), true
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	if isAbsent(raw) {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f != 0, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, false
	}
	return parseBoolText(s)
}

func parseBoolText(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true, true
	case "0", "false", "off", "no":
		return false, true
	}
	return false, false
}
