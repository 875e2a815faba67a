package render

import (
	"math"
	"testing"

	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
)

func TestEstimateMeasurer(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		data  map[string]any
		want  layout.Size
	}{
		{"default font", "abcd", nil, layout.Size{W: 4*16*0.55 + 20, H: 16*1.25 + 10}},
		{"wide characters", "思维导图", nil, layout.Size{W: 8*16*0.55 + 20, H: 16*1.25 + 10}},
		{"combining marks", "e\u0301e", nil, layout.Size{W: 2*16*0.55 + 20, H: 16*1.25 + 10}},
		{"numeric font size", "ab", map[string]any{"font-size": 20.0}, layout.Size{W: 2*20*0.55 + 20, H: 20*1.25 + 10}},
		{"px font size", "ab", map[string]any{"font-size": "20px"}, layout.Size{W: 2*20*0.55 + 20, H: 20*1.25 + 10}},
		{"bad font size", "ab", map[string]any{"font-size": "big"}, layout.Size{W: 2*16*0.55 + 20, H: 16*1.25 + 10}},
		{"image", "ab", map[string]any{"background-image": "x.png", "width": 120, "height": "80"}, layout.Size{W: 120, H: 80}},
		{"image without size", "ab", map[string]any{"background-image": "x.png"}, layout.Size{W: 2*16*0.55 + 20, H: 16*1.25 + 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mind.New()
			n, err := m.SetRoot("r", tt.topic, tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if got := (EstimateMeasurer{}).Measure(n); !sizeEqual(got, tt.want) {
				t.Errorf("Measure() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func sizeEqual(a, b layout.Size) bool {
	return math.Abs(a.W-b.W) < 1e-9 && math.Abs(a.H-b.H) < 1e-9
}

func TestEstimateMeasurerPadding(t *testing.T) {
	m := mind.New()
	n, _ := m.SetRoot("r", "", nil)
	got := EstimateMeasurer{PaddingX: 1, PaddingY: 2}.Measure(n)
	if got.W != 2 || got.H != 16*1.25+4 {
		t.Errorf("Measure() = %+v", got)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{3.5, 3.5, true},
		{float32(2), 2, true},
		{7, 7, true},
		{int64(9), 9, true},
		{"12", 12, true},
		{"12px", 12, true},
		{"px", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := Number(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Number(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
