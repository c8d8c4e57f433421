package history

import (
	"fmt"
	"time"

	"github.com/mrlokans/wordmark/internal/entities"
)

// Group is a set of tracked properties that share a debounce window.
type Group string

const (
	GroupText      Group = "text"
	GroupCard      Group = "card"
	GroupTextStyle Group = "text-style"
	GroupIconStyle Group = "icon-style"
	GroupIcon      Group = "icon"
	GroupFont      Group = "font"
	GroupLayout    Group = "layout"
)

// Groups lists every group in scheduling order, used when one change touches
// several of them.
var Groups = []Group{GroupText, GroupTextStyle, GroupCard, GroupIcon, GroupIconStyle, GroupFont, GroupLayout}

// Windows maps a group to its debounce window. Zero commits immediately.
type Windows map[Group]time.Duration

// DefaultWindows returns the standard windows: free text waits longest,
// slider-like properties less, discrete selections commit at once.
func DefaultWindows() Windows {
	return Windows{
		GroupText:      800 * time.Millisecond,
		GroupCard:      500 * time.Millisecond,
		GroupTextStyle: 500 * time.Millisecond,
		GroupIconStyle: 500 * time.Millisecond,
		GroupIcon:      0,
		GroupFont:      0,
		GroupLayout:    0,
	}
}

type (
	TextChange struct {
		Value *string  `json:"value,omitempty"`
		Color *string  `json:"color,omitempty"`
		Size  *float64 `json:"size,omitempty"`
	}

	CardChange struct {
		BackgroundColor *string  `json:"backgroundColor,omitempty"`
		Width           *float64 `json:"width,omitempty"`
		Height          *float64 `json:"height,omitempty"`
		Unit            *string  `json:"unit,omitempty"`
	}

	IconChange struct {
		Name  *string  `json:"name,omitempty"`
		Color *string  `json:"color,omitempty"`
		Size  *float64 `json:"size,omitempty"`
	}
)

// Change is a partial update of the tracked design. Nil fields are left
// alone.
type Change struct {
	Text   *TextChange          `json:"text,omitempty"`
	Card   *CardChange          `json:"card,omitempty"`
	Icon   *IconChange          `json:"icon,omitempty"`
	Font   *entities.FontRecord `json:"font,omitempty"`
	Layout *entities.Layout     `json:"layout,omitempty"`
}

// Validate rejects values the design cannot hold.
func (c Change) Validate() error {
	if c.Layout != nil && !c.Layout.Valid() {
		return fmt.Errorf("unknown layout %q", *c.Layout)
	}
	if c.Font != nil && c.Font.Family == "" {
		return fmt.Errorf("font family is required")
	}
	sizes := []struct {
		name  string
		value *float64
	}{
		{"text size", sizeOf(c.Text)},
		{"icon size", iconSizeOf(c.Icon)},
		{"card width", cardDim(c.Card, true)},
		{"card height", cardDim(c.Card, false)},
	}
	for _, s := range sizes {
		if s.value != nil && *s.value < 0 {
			return fmt.Errorf("%s must not be negative", s.name)
		}
	}
	return nil
}

func sizeOf(t *TextChange) *float64 {
	if t == nil {
		return nil
	}
	return t.Size
}

func iconSizeOf(i *IconChange) *float64 {
	if i == nil {
		return nil
	}
	return i.Size
}

func cardDim(c *CardChange, width bool) *float64 {
	if c == nil {
		return nil
	}
	if width {
		return c.Width
	}
	return c.Height
}

// Groups returns the groups the change touches, in scheduling order.
func (c Change) Groups() []Group {
	touched := map[Group]bool{}
	if c.Text != nil {
		if c.Text.Value != nil {
			touched[GroupText] = true
		}
		if c.Text.Color != nil || c.Text.Size != nil {
			touched[GroupTextStyle] = true
		}
	}
	if c.Card != nil {
		touched[GroupCard] = true
	}
	if c.Icon != nil {
		if c.Icon.Name != nil {
			touched[GroupIcon] = true
		}
		if c.Icon.Color != nil || c.Icon.Size != nil {
			touched[GroupIconStyle] = true
		}
	}
	if c.Font != nil {
		touched[GroupFont] = true
	}
	if c.Layout != nil {
		touched[GroupLayout] = true
	}

	out := make([]Group, 0, len(touched))
	for _, g := range Groups {
		if touched[g] {
			out = append(out, g)
		}
	}
	return out
}

// applyTo writes the change into d.
func (c Change) applyTo(d *entities.Design) {
	if t := c.Text; t != nil {
		setString(&d.Text.Value, t.Value)
		setString(&d.Text.Color, t.Color)
		setFloat(&d.Text.Size, t.Size)
	}
	if k := c.Card; k != nil {
		setString(&d.Card.BackgroundColor, k.BackgroundColor)
		setFloat(&d.Card.Width, k.Width)
		setFloat(&d.Card.Height, k.Height)
		setString(&d.Card.Unit, k.Unit)
	}
	if i := c.Icon; i != nil {
		setString(&d.Icon.Name, i.Name)
		setString(&d.Icon.Color, i.Color)
		setFloat(&d.Icon.Size, i.Size)
	}
	if c.Font != nil {
		d.Font = c.Font.Clone()
	}
	if c.Layout != nil {
		d.Layout = *c.Layout
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
