// Package thumbnail renders small raster previews of a design for the
// version history.
//
// The preview is schematic: the card background with a block standing in
// for the text and a square for the icon, arranged by the layout. It is not
// a typographic rendering.
package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/utils"
)

const (
	// DefaultWidth is the thumbnail width in pixels.
	DefaultWidth = 160

	maxCanvas = 1600
	dpi       = 96.0
	gap       = 0.25 // of the icon size
)

var (
	defaultBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	defaultInk        = color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}
)

// PreviewCapturer renders designs into PNG data URLs.
type PreviewCapturer struct {
	width int
}

// NewPreviewCapturer creates a capturer producing thumbnails width pixels
// wide.
func NewPreviewCapturer(width int) *PreviewCapturer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &PreviewCapturer{width: width}
}

// Capture renders d and returns it as a base64 PNG data URL.
func (c *PreviewCapturer) Capture(ctx context.Context, d entities.Design) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	canvas, err := Render(d)
	if err != nil {
		return "", err
	}
	thumb := imaging.Resize(canvas, c.width, 0, imaging.Box)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Render draws d at card scale, capped at maxCanvas on the longer side.
func Render(d entities.Design) (*image.NRGBA, error) {
	w, h := toPixels(d.Card.Width, d.Card.Unit), toPixels(d.Card.Height, d.Card.Unit)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("card has no area: %gx%g %s", d.Card.Width, d.Card.Height, d.Card.Unit)
	}

	scale := 1.0
	if longest := math.Max(w, h); longest > maxCanvas {
		scale = maxCanvas / longest
	}
	cw, ch := int(math.Round(w*scale)), int(math.Round(h*scale))
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, cw, ch))
	bg := utils.ColorOrDefault(d.Card.BackgroundColor, defaultBackground)
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	text, icon := blocks(d, scale)
	for _, b := range arrange(d.Layout, text, icon, cw, ch) {
		draw.Draw(img, b.rect, &image.Uniform{C: b.color}, image.Point{}, draw.Over)
	}
	return img, nil
}

type block struct {
	size  image.Point
	rect  image.Rectangle
	color color.NRGBA
}

// blocks sizes the text and icon stand-ins. The text block is roughly as wide
// as the string set at its size.
func blocks(d entities.Design, scale float64) (text, icon block) {
	textSize := d.Text.Size * scale
	runes := float64(len([]rune(d.Text.Value)))
	text = block{
		size:  image.Pt(int(math.Round(runes*textSize*0.55)), int(math.Round(textSize*0.7))),
		color: utils.ColorOrDefault(d.Text.Color, defaultInk),
	}
	iconSize := int(math.Round(d.Icon.Size * scale))
	icon = block{
		size:  image.Pt(iconSize, iconSize),
		color: utils.ColorOrDefault(d.Icon.Color, defaultInk),
	}
	return text, icon
}

// arrange positions the blocks around the canvas centre.
func arrange(layout entities.Layout, text, icon block, cw, ch int) []block {
	spacing := int(math.Round(float64(icon.size.X) * gap))
	center := image.Pt(cw/2, ch/2)

	place := func(b block, at image.Point) block {
		b.rect = image.Rectangle{Min: at, Max: at.Add(b.size)}
		return b
	}
	centred := func(b block) block {
		return place(b, center.Sub(b.size.Div(2)))
	}

	switch layout {
	case entities.LayoutTextOnly:
		return []block{centred(text)}
	case entities.LayoutIconOnly:
		return []block{centred(icon)}
	case entities.LayoutIconTop, entities.LayoutIconBottom:
		total := icon.size.Y + spacing + text.size.Y
		top := center.Y - total/2
		first, second := icon, text
		if layout == entities.LayoutIconBottom {
			first, second = text, icon
		}
		a := place(first, image.Pt(center.X-first.size.X/2, top))
		b := place(second, image.Pt(center.X-second.size.X/2, top+first.size.Y+spacing))
		return []block{a, b}
	default:
		total := icon.size.X + spacing + text.size.X
		left := center.X - total/2
		first, second := icon, text
		if layout == entities.LayoutIconRight {
			first, second = text, icon
		}
		a := place(first, image.Pt(left, center.Y-first.size.Y/2))
		b := place(second, image.Pt(left+first.size.X+spacing, center.Y-second.size.Y/2))
		return []block{a, b}
	}
}

func toPixels(v float64, unit string) float64 {
	switch unit {
	case "in":
		return v * dpi
	case "cm":
		return v * dpi / 2.54
	case "mm":
		return v * dpi / 25.4
	}
	return v
}
