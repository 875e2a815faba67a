package render

import (
	"strconv"

	"github.com/rivo/uniseg"

	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// Data keys read by the measurer and the renderers.
const (
	KeyFontSize         = "font-size"
	KeyFontWeight       = "font-weight"
	KeyFontStyle        = "font-style"
	KeyBackgroundColor  = "background-color"
	KeyForegroundColor  = "foreground-color"
	KeyColor            = "color"
	KeyBackgroundImage  = "background-image"
	KeyBackgroundRotate = "background-rotation"
	KeyWidth            = "width"
	KeyHeight           = "height"
)

// DefaultFontSize applies to nodes without font-size data.
const DefaultFontSize = 16.0

const (
	fontCharWidth   = 0.55
	lineHeight      = 1.25
	defaultPaddingX = 10.0
	defaultPaddingY = 5.0
)

// EstimateMeasurer sizes nodes from their topic. Each monospace cell of the
// topic's display width is FontSize*0.55 wide (wide East Asian characters
// take two cells) and the line is FontSize*1.25 tall. Padding is added on
// both sides. A node with a background image uses its width and height data
// instead.
type EstimateMeasurer struct {
	// PaddingX and PaddingY default to 10 and 5 when zero.
	PaddingX, PaddingY float64
}

var _ layout.Measurer = EstimateMeasurer{}

// Measure implements [layout.Measurer].
func (em EstimateMeasurer) Measure(n *mind.Node) layout.Size {
	px, py := em.PaddingX, em.PaddingY
	if px == 0 {
		px = defaultPaddingX
	}
	if py == 0 {
		py = defaultPaddingY
	}

	if _, ok := n.Data[KeyBackgroundImage]; ok {
		w, wok := Number(n.Data[KeyWidth])
		h, hok := Number(n.Data[KeyHeight])
		if wok && hok {
			return layout.Size{W: w, H: h}
		}
	}

	fs := FontSize(n)
	return layout.Size{
		W: float64(uniseg.StringWidth(n.Topic))*fs*fontCharWidth + 2*px,
		H: fs*lineHeight + 2*py,
	}
}

// FontSize returns the node's font-size data as a number, or
// [DefaultFontSize]. Values may be numbers or strings such as "14" or "14px".
func FontSize(n *mind.Node) float64 {
	if fs, ok := Number(n.Data[KeyFontSize]); ok && fs > 0 {
		return fs
	}
	return DefaultFontSize
}

// Number converts a decoded data value to float64. It accepts Go numeric
// types and numeric strings with an optional "px" suffix.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		if len(x) > 2 && x[len(x)-2:] == "px" {
			x = x[:len(x)-2]
		}
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

// String returns a data value as a string, or "" when it is absent or not a
// string.
func String(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
