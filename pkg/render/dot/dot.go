package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mindtree/pkg/geometry"
	"github.com/matzehuels/mindtree/pkg/render"
)

// Graphviz positions are in points and sizes in inches.
const (
	pointsPerPixel = 0.75
	pixelsPerInch  = 96.0
)

// Options configures DOT generation.
type Options struct {
	// Detailed appends the node's data to its label.
	Detailed bool
}

// ToDOT converts l to Graphviz DOT. Hidden nodes and their edges are
// omitted.
func ToDOT(l geometry.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=curved;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#555555\", penwidth=2];\n")
	buf.WriteString("\n")

	for i := range l.Nodes {
		n := &l.Nodes[i]
		if !n.Visible {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if n.IsRoot() || !n.Visible {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", n.Parent, n.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *geometry.Node, detailed bool) string {
	if !detailed || len(n.Data) == 0 {
		return n.Topic
	}
	parts := make([]string, 0, len(n.Data))
	for _, k := range slices.Sorted(maps.Keys(n.Data)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data[k]))
	}
	return n.Topic + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *geometry.Node, detailed bool) []string {
	// Graphviz's y axis points up.
	cx := (n.X + n.Width/2) * pointsPerPixel
	cy := -(n.Y + n.Height/2) * pointsPerPixel
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(cx), fmtFloat(cy)),
		fmt.Sprintf("width=%s", fmtFloat(n.Width/pixelsPerInch)),
		fmt.Sprintf("height=%s", fmtFloat(n.Height/pixelsPerInch)),
	}
	if n.IsRoot() {
		attrs = append(attrs, "fillcolor=\"#428bca\"", "fontcolor=white")
	}
	if c := render.String(n.Data, render.KeyBackgroundColor); c != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	if c := render.String(n.Data, render.KeyForegroundColor); c != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", c))
	}
	if fs, ok := render.Number(n.Data[render.KeyFontSize]); ok && fs > 0 {
		attrs = append(attrs, fmt.Sprintf("fontsize=%s", fmtFloat(fs*pointsPerPixel)))
	}
	if !n.IsRoot() && !n.Expanded && n.Expander != nil {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

func fmtFloat(f float64) string {
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderSVG renders DOT source to SVG using Graphviz's neato engine so that
// pinned positions are respected.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's <svg> tag, which carries pt units,
// with a unitless one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
