package settings

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Warning describes a record value the device will accept but that is
// probably not what the user intended.
type Warning struct {
	Field   Field
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// ParseValue converts command-line text into a typed value for the named
// field. Enum names match case-insensitively and are returned in their
// canonical spelling; values outside the known set are rejected here
// because a typo on the command line should not reach the device.
//
// Numeric values are not range checked. Model.Set clamps them.
func ParseValue(name, text string) (Field, any, error) {
	spec, ok := Lookup(name)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q (run 'fields' to list them)", ErrUnknownField, name)
	}

	text = strings.TrimSpace(text)

	switch spec.Kind {
	case KindEnum:
		for _, opt := range spec.Options {
			if strings.EqualFold(opt, text) {
				return spec.Field, opt, nil
			}
		}
		return "", nil, fmt.Errorf("%w %s: %q is not one of %s",
			ErrInvalidValue, spec.Field, text, strings.Join(spec.Options, ", "))

	case KindBool:
		b, ok := parseBoolText(text)
		if !ok {
			return "", nil, fmt.Errorf("%w %s: %q is not a boolean (use on/off, true/false or 1/0)",
				ErrInvalidValue, spec.Field, text)
		}
		return spec.Field, b, nil

	case KindText:
		return spec.Field, text, nil

	case KindInt:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w %s: %q is not a number", ErrInvalidValue, spec.Field, text)
		}
		return spec.Field, int(math.Round(n)), nil

	case KindFloat:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w %s: %q is not a number", ErrInvalidValue, spec.Field, text)
		}
		return spec.Field, n, nil
	}

	return "", nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// RangeWarning reports whether v lies outside the field's bounds and will
// be clamped when stored. It returns nil for non-numeric fields.
func RangeWarning(f Field, v float64) *Warning {
	spec, ok := Lookup(string(f))
	if !ok || !spec.Numeric() {
		return nil
	}
	if v >= spec.Min && v <= spec.Max {
		return nil
	}
	return &Warning{
		Field: f,
		Message: fmt.Sprintf("%s is outside %s..%s and will be stored as %s",
			formatNumber(v), formatNumber(spec.Min), formatNumber(spec.Max), formatNumber(spec.Clamp(v))),
	}
}

// ValidateRecord checks a record for values the device tolerates but
// cannot act on. The thresholds are not required to be ordered, so an
// inverted pair is a warning rather than an error.
func ValidateRecord(r Record) []Warning {
	var warnings []Warning

	if !r.TopPosition.Valid() {
		warnings = append(warnings, Warning{FieldTopPosition, fmt.Sprintf("unknown mode %q, top bar will be blank", r.TopPosition)})
	}
	if !r.MiddlePosition.Valid() {
		warnings = append(warnings, Warning{FieldMiddlePosition, fmt.Sprintf("unknown mode %q, middle value will be blank", r.MiddlePosition)})
	}
	if !r.LEDAnimationMode.Valid() {
		warnings = append(warnings, Warning{FieldLEDAnimationMode, fmt.Sprintf("unknown animation %q", r.LEDAnimationMode)})
	}
	if !r.LEDColorScheme.Valid() {
		warnings = append(warnings, Warning{FieldLEDColorScheme, fmt.Sprintf("unknown colour scheme %q", r.LEDColorScheme)})
	}
	if r.HumidityThresholdLow > r.HumidityThresholdHigh {
		warnings = append(warnings, Warning{
			Field: FieldHumidityThresholdLow,
			Message: fmt.Sprintf("low threshold %.1f is above high threshold %.1f",
				r.HumidityThresholdLow, r.HumidityThresholdHigh),
		})
	}
	if r.ScrollingEnabled && strings.TrimSpace(r.ScrollingText) == "" {
		warnings = append(warnings, Warning{FieldScrollingText, "scrolling is enabled but the text is empty"})
	}

	return warnings
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
