package display

import "github.com/tempsense/tempsense/internal/settings"

// Selection is the part of the configuration record that affects the preview.
type Selection struct {
	TopPosition      settings.TopMode
	MiddlePosition   settings.MiddleMode
	ScrollingEnabled bool
	MarqueeEnabled   bool
	ScrollingText    string
}

// SelectionOf projects a record onto the fields the preview reads.
func SelectionOf(r settings.Record) Selection {
	return Selection{
		TopPosition:      r.TopPosition,
		MiddlePosition:   r.MiddlePosition,
		ScrollingEnabled: r.ScrollingEnabled,
		MarqueeEnabled:   r.MarqueeEnabled,
		ScrollingText:    r.ScrollingText,
	}
}

// Preview is what the device screen would show.
type Preview struct {
	TopText        string
	MiddleText     string
	MarqueeVisible bool
	// MarqueeText is empty whenever MarqueeVisible is false.
	MarqueeText string
	// DotsVisible mirrors the marquee dots setting.
	DotsVisible bool
}

// Renderer holds the latest sample and selection and renders the preview
// from them. It keeps no history.
type Renderer struct {
	sample    Sample
	hasSample bool
	selection Selection
	current   Preview
}

// NewRenderer creates a renderer for the given selection with a zero sample.
func NewRenderer(sel Selection) *Renderer {
	r := &Renderer{selection: sel}
	r.current = r.Render()
	return r
}

// SetSample replaces the last known sample and re-renders.
func (r *Renderer) SetSample(s Sample) Preview {
	r.sample = s
	r.hasSample = true
	r.current = r.Render()
	return r.current
}

// SetSelection replaces the display selection and re-renders.
func (r *Renderer) SetSelection(sel Selection) Preview {
	r.selection = sel
	r.current = r.Render()
	return r.current
}

// Render computes the preview from the current state. It has no side
// effects, so repeated calls return identical output.
func (r *Renderer) Render() Preview {
	p := Preview{
		TopText:        FormatTop(r.sample, r.selection.TopPosition),
		MiddleText:     FormatMiddle(r.sample, r.selection.MiddlePosition),
		MarqueeVisible: r.selection.ScrollingEnabled,
		DotsVisible:    r.selection.MarqueeEnabled,
	}
	if p.MarqueeVisible {
		p.MarqueeText = r.selection.ScrollingText
	}
	return p
}

// Current returns the output of the last re-render.
func (r *Renderer) Current() Preview {
	return r.current
}

// Sample returns the last sample and whether one has been received.
func (r *Renderer) Sample() (Sample, bool) {
	return r.sample, r.hasSample
}

// Selection returns the active selection.
func (r *Renderer) Selection() Selection {
	return r.selection
}
