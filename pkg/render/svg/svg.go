package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/mindtree/pkg/geometry"
	"github.com/matzehuels/mindtree/pkg/render"
)

// Defaults for [Render].
const (
	DefaultHMargin   = 100.0
	DefaultVMargin   = 50.0
	DefaultLineWidth = 2.0
	DefaultLineColor = "#555"
)

const (
	rootFill      = "#428bca"
	rootText      = "#fff"
	nodeFill      = "#fff"
	nodeText      = "#333"
	nodeStroke    = "#ccc"
	expanderFill  = "#fff"
	cornerRadius  = 4.0
	defaultFamily = "Helvetica, Arial, sans-serif"
)

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	hmargin, vmargin float64
	lineWidth        float64
	lineColor        string
	class            string
	expanders        bool
}

// WithMargin sets the horizontal and vertical canvas margins.
func WithMargin(h, v float64) Option {
	return func(r *renderer) { r.hmargin, r.vmargin = h, v }
}

// WithLineColor sets the connector color.
func WithLineColor(c string) Option { return func(r *renderer) { r.lineColor = c } }

// WithLineWidth sets the connector stroke width.
func WithLineWidth(w float64) Option { return func(r *renderer) { r.lineWidth = w } }

// WithClass adds a CSS class to the root <svg> element.
func WithClass(c string) Option { return func(r *renderer) { r.class = c } }

// WithoutExpanders omits the expand/collapse toggles.
func WithoutExpanders() Option { return func(r *renderer) { r.expanders = false } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		hmargin:   DefaultHMargin,
		vmargin:   DefaultVMargin,
		lineWidth: DefaultLineWidth,
		lineColor: DefaultLineColor,
		expanders: true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Size returns the canvas size [Render] uses for l.
func Size(l geometry.Layout, opts ...Option) (w, h float64) {
	r := newRenderer(opts...)
	return l.Width + 2*r.hmargin, l.Height + 2*r.vmargin
}

// Render draws the visible part of l.
func Render(l geometry.Layout, opts ...Option) []byte {
	r := newRenderer(opts...)
	w, h := l.Width+2*r.hmargin, l.Height+2*r.vmargin
	o := l.Origin(w, h)
	idx := l.Index()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s"`,
		num(w), num(h), num(w), num(h))
	if r.class != "" {
		fmt.Fprintf(&buf, ` class="%s"`, escape(r.class))
	}
	buf.WriteString(">\n")

	buf.WriteString(`  <g class="connectors" fill="none"`)
	fmt.Fprintf(&buf, ` stroke="%s" stroke-width="%s">`+"\n", escape(r.lineColor), num(r.lineWidth))
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if n.IsRoot() || !n.Visible {
			continue
		}
		if p, ok := idx[n.Parent]; ok {
			renderConnector(&buf, o, p.Out, n.In)
		}
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for i := range l.Nodes {
		if n := &l.Nodes[i]; n.Visible {
			renderNode(&buf, o, n)
		}
	}
	buf.WriteString("  </g>\n")

	if r.expanders {
		buf.WriteString(`  <g class="expanders">` + "\n")
		for i := range l.Nodes {
			if n := &l.Nodes[i]; n.Visible && n.Expander != nil {
				renderExpander(&buf, o, n, l.ExpanderSize)
			}
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderConnector draws a cubic curve leaving the parent horizontally and
// arriving at the child horizontally.
func renderConnector(buf *bytes.Buffer, o, from, to geometry.Point) {
	x1, y1 := o.X+from.X, o.Y+from.Y
	x2, y2 := o.X+to.X, o.Y+to.Y
	fmt.Fprintf(buf, `    <path d="M %s %s C %s %s, %s %s, %s %s"/>`+"\n",
		num(x1), num(y1),
		num(x1+(x2-x1)*2/3), num(y1),
		num(x1), num(y2),
		num(x2), num(y2))
}

func renderNode(buf *bytes.Buffer, o geometry.Point, n *geometry.Node) {
	x, y := o.X+n.X, o.Y+n.Y
	fill, text := nodeFill, nodeText
	if n.IsRoot() {
		fill, text = rootFill, rootText
	}
	if c := render.String(n.Data, render.KeyBackgroundColor); c != "" {
		fill = c
	}
	if c := render.String(n.Data, render.KeyForegroundColor); c != "" {
		text = c
	} else if c := render.String(n.Data, render.KeyColor); c != "" {
		text = c
	}

	fmt.Fprintf(buf, `    <g class="node" id="node-%s">`+"\n", escape(n.ID))
	fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s"/>`+"\n",
		num(x), num(y), num(n.Width), num(n.Height), num(cornerRadius), escape(fill), nodeStroke)

	if img := render.String(n.Data, render.KeyBackgroundImage); img != "" {
		fmt.Fprintf(buf, `      <image href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid slice"`,
			escape(img), num(x), num(y), num(n.Width), num(n.Height))
		if rot, ok := render.Number(n.Data[render.KeyBackgroundRotate]); ok && rot != 0 {
			fmt.Fprintf(buf, ` transform="rotate(%s %s %s)"`, num(rot), num(x+n.Width/2), num(y+n.Height/2))
		}
		buf.WriteString("/>\n")
	}

	fs := render.DefaultFontSize
	if v, ok := render.Number(n.Data[render.KeyFontSize]); ok && v > 0 {
		fs = v
	}
	fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" dominant-baseline="central" font-family="%s" font-size="%s" fill="%s"`,
		num(x+n.Width/2), num(y+n.Height/2), defaultFamily, num(fs), escape(text))
	if wgt := render.String(n.Data, render.KeyFontWeight); wgt != "" {
		fmt.Fprintf(buf, ` font-weight="%s"`, escape(wgt))
	}
	if st := render.String(n.Data, render.KeyFontStyle); st != "" {
		fmt.Fprintf(buf, ` font-style="%s"`, escape(st))
	}
	fmt.Fprintf(buf, ">%s</text>\n", escape(n.Topic))
	buf.WriteString("    </g>\n")
}

func renderExpander(buf *bytes.Buffer, o geometry.Point, n *geometry.Node, size float64) {
	r := size / 2
	cx, cy := o.X+n.Expander.X+r, o.Y+n.Expander.Y+r
	sign := "-"
	if !n.Expanded {
		sign = "+"
	}
	fmt.Fprintf(buf, `    <g class="expander" data-node="%s">`+"\n", escape(n.ID))
	fmt.Fprintf(buf, `      <circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s"/>`+"\n",
		num(cx), num(cy), num(r), expanderFill, nodeStroke)
	fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" dominant-baseline="central" font-size="%s">%s</text>`+"\n",
		num(cx), num(cy), num(size), sign)
	buf.WriteString("    </g>\n")
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
