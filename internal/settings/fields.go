package settings

import "fmt"

// TopMode selects what the OLED top bar shows.
type TopMode string

const (
	TopTempBoth TopMode = "tempBoth"
	TopTempC    TopMode = "tempC"
	TopTempF    TopMode = "tempF"
	TopHumidity TopMode = "humidity"
	TopNone     TopMode = "none"
)

// TopModes lists the top bar modes in the order the device page offers them.
var TopModes = []TopMode{TopTempBoth, TopTempC, TopTempF, TopHumidity, TopNone}

// Valid reports whether the mode is one the device knows about.
func (m TopMode) Valid() bool {
	for _, v := range TopModes {
		if v == m {
			return true
		}
	}
	return false
}

// Label returns the human-readable name used by the device page.
func (m TopMode) Label() string {
	switch m {
	case TopTempBoth:
		return "Temp C / Temp F"
	case TopTempC:
		return "Temp C"
	case TopTempF:
		return "Temp F"
	case TopHumidity:
		return "Humidity"
	case TopNone:
		return "None"
	default:
		return string(m)
	}
}

// MiddleMode selects what the large middle value shows.
type MiddleMode string

const (
	MiddleTempC    MiddleMode = "tempC"
	MiddleTempF    MiddleMode = "tempF"
	MiddleHumidity MiddleMode = "humidity"
	MiddleNone     MiddleMode = "none"
)

// MiddleModes lists the middle value modes in page order.
var MiddleModes = []MiddleMode{MiddleTempC, MiddleTempF, MiddleHumidity, MiddleNone}

// Valid reports whether the mode is one the device knows about.
func (m MiddleMode) Valid() bool {
	for _, v := range MiddleModes {
		if v == m {
			return true
		}
	}
	return false
}

// Label returns the human-readable name used by the device page.
func (m MiddleMode) Label() string {
	switch m {
	case MiddleTempC:
		return "Temp C"
	case MiddleTempF:
		return "Temp F"
	case MiddleHumidity:
		return "Humidity"
	case MiddleNone:
		return "None"
	default:
		return string(m)
	}
}

// AnimationMode is the LED animation played by the device.
type AnimationMode string

const (
	AnimStatic AnimationMode = "static"
	AnimFade   AnimationMode = "fade"
	AnimBounce AnimationMode = "bounce"
	AnimWiggle AnimationMode = "wiggle"
)

// AnimationModes lists the LED animation modes in page order.
var AnimationModes = []AnimationMode{AnimStatic, AnimFade, AnimBounce, AnimWiggle}

// Valid reports whether the mode is one the device knows about.
func (m AnimationMode) Valid() bool {
	for _, v := range AnimationModes {
		if v == m {
			return true
		}
	}
	return false
}

// Label returns the human-readable name used by the device page.
func (m AnimationMode) Label() string {
	switch m {
	case AnimStatic:
		return "Static (Follows Humidity)"
	case AnimFade:
		return "Fade"
	case AnimBounce:
		return "Bounce"
	case AnimWiggle:
		return "Wiggle"
	default:
		return string(m)
	}
}

// ColorScheme names one of the LED palettes built into the firmware.
type ColorScheme string

// DefaultColorScheme is the palette used when none is configured.
const DefaultColorScheme ColorScheme = "Default"

// ColorSchemes lists the 27 palettes in page order.
var ColorSchemes = []ColorScheme{
	"Default", "Easter", "Christmas", "Halloween", "Valentine",
	"Independence", "NewYears", "StPatrick", "Summer", "Winter",
	"Autumn", "Spring", "Rainbow", "Ocean", "Sunset",
	"Aurora", "Fireworks", "Galaxy", "Neon", "Pastel",
	"Vintage", "Tropical", "Forest", "Desert", "Cyberpunk",
	"Lava", "Ice",
}

// Valid reports whether the palette is one the firmware ships.
func (c ColorScheme) Valid() bool {
	for _, v := range ColorSchemes {
		if v == c {
			return true
		}
	}
	return false
}

// Field is the JSON name of a configuration record field.
type Field string

const (
	FieldTopPosition           Field = "topPosition"
	FieldMiddlePosition        Field = "middlePosition"
	FieldScrollingEnabled      Field = "scrollingEnabled"
	FieldScrollingText         Field = "scrollingText"
	FieldUpdateInterval        Field = "updateInterval"
	FieldMarqueeEnabled        Field = "marqueeEnabled"
	FieldLEDEnabled            Field = "ledEnabled"
	FieldHumidityThresholdLow  Field = "humidityThresholdLow"
	FieldHumidityThresholdHigh Field = "humidityThresholdHigh"
	FieldLEDIntensity          Field = "ledIntensity"
	FieldLEDAnimSpeed          Field = "ledAnimSpeed"
	FieldLEDAnimationMode      Field = "ledAnimationMode"
	FieldLEDColorScheme        Field = "ledColorScheme"
)

// Kind is the value type of a field.
type Kind int

const (
	KindEnum Kind = iota
	KindBool
	KindText
	KindInt
	KindFloat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// PushClass decides when an edit is sent to the device.
type PushClass int

const (
	// Discrete fields are pushed once per committed edit.
	Discrete PushClass = iota
	// Continuous fields are pushed on every incremental movement.
	Continuous
)

// String returns the push class name.
func (c PushClass) String() string {
	if c == Continuous {
		return "continuous"
	}
	return "discrete"
}

// MaxScrollingTextLen is the longest scrolling text the device stores.
const MaxScrollingTextLen = 256

// FieldSpec describes one field of the record.
type FieldSpec struct {
	Field   Field
	Label   string
	Kind    Kind
	Min     float64 // numeric kinds only
	Max     float64 // numeric kinds only
	Step    float64 // numeric kinds only
	MaxLen  int     // KindText only
	Class   PushClass
	Options []string // KindEnum only
	Unit    string
}

// Clamp bounds a numeric value to the field's range. NaN becomes Min.
func (s FieldSpec) Clamp(v float64) float64 {
	if v != v {
		return s.Min
	}
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Numeric reports whether the field holds a number.
func (s FieldSpec) Numeric() bool {
	return s.Kind == KindInt || s.Kind == KindFloat
}

// Catalogue lists every field in the order the device page shows them.
var Catalogue = []FieldSpec{
	{Field: FieldTopPosition, Label: "Top Bar Value", Kind: KindEnum, Options: stringsOf(TopModes)},
	{Field: FieldMiddlePosition, Label: "Middle Value", Kind: KindEnum, Options: stringsOf(MiddleModes)},
	{Field: FieldScrollingEnabled, Label: "Scrolling Text", Kind: KindBool},
	{Field: FieldScrollingText, Label: "Scrolling Text Content", Kind: KindText, MaxLen: MaxScrollingTextLen},
	{Field: FieldUpdateInterval, Label: "Data Refresh Rate", Kind: KindInt, Min: 10, Max: 500, Step: 10, Unit: "ms"},
	{Field: FieldMarqueeEnabled, Label: "Marquee Dots", Kind: KindBool},
	{Field: FieldLEDEnabled, Label: "LED Enabled", Kind: KindBool},
	{Field: FieldHumidityThresholdLow, Label: "Low Humidity Threshold", Kind: KindFloat, Min: 0, Max: 100, Step: 0.1, Unit: "%"},
	{Field: FieldHumidityThresholdHigh, Label: "High Humidity Threshold", Kind: KindFloat, Min: 0, Max: 100, Step: 0.1, Unit: "%"},
	{Field: FieldLEDIntensity, Label: "LED Intensity", Kind: KindInt, Min: 0, Max: 255, Step: 1, Class: Continuous},
	{Field: FieldLEDAnimSpeed, Label: "LED Animation Speed", Kind: KindInt, Min: 100, Max: 10000, Step: 100, Class: Continuous, Unit: "ms"},
	{Field: FieldLEDAnimationMode, Label: "LED Animation Mode", Kind: KindEnum, Options: stringsOf(AnimationModes)},
	{Field: FieldLEDColorScheme, Label: "LED Color Scheme", Kind: KindEnum, Options: stringsOf(ColorSchemes)},
}

// Lookup finds the spec for a field by its JSON name.
func Lookup(name string) (FieldSpec, bool) {
	for _, spec := range Catalogue {
		if string(spec.Field) == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// MustLookup is Lookup for fields known at compile time.
func MustLookup(f Field) FieldSpec {
	spec, ok := Lookup(string(f))
	if !ok {
		panic(fmt.Sprintf("settings: unknown field %q", f))
	}
	return spec
}

// ClassOf returns the push class of a field. Unknown fields are discrete.
func ClassOf(f Field) PushClass {
	if spec, ok := Lookup(string(f)); ok {
		return spec.Class
	}
	return Discrete
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
