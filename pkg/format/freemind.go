package format

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// freeMindVersion is written to the version attribute of <map>.
const freeMindVersion = "1.0.1"

type fmMap struct {
	XMLName xml.Name `xml:"map"`
	Version string   `xml:"version,attr"`
	Nodes   []fmNode `xml:"node"`
}

type fmNode struct {
	ID         string        `xml:"ID,attr"`
	Position   string        `xml:"POSITION,attr,omitempty"`
	Text       *string       `xml:"TEXT,attr"`
	Rich       []richContent `xml:"richcontent"`
	Attributes []fmAttribute `xml:"attribute"`
	Children   []fmNode      `xml:"node"`
}

type fmAttribute struct {
	Name  string `xml:"NAME,attr"`
	Value string `xml:"VALUE,attr"`
}

// richContent keeps the text content of a <richcontent> element, markup
// stripped.
type richContent struct {
	Text string `xml:"-"`
}

// UnmarshalXML collects every character run inside the element.
func (r *richContent) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				r.Text = strings.TrimSpace(b.String())
				return nil
			}
			depth--
		}
	}
}

func decodeFreeMind(data []byte, meta Meta) (*mind.Mind, error) {
	var doc fmMap
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode freemind")
	}
	if len(doc.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "freemind map has no root node")
	}
	m := newMind(meta)
	if err := loadFreeMindNode(m, "", &doc.Nodes[0]); err != nil {
		return nil, err
	}
	return m, nil
}

func loadFreeMindNode(m *mind.Mind, parentID string, x *fmNode) error {
	topic := ""
	if x.Text != nil {
		topic = *x.Text
	} else if len(x.Rich) > 0 {
		topic = x.Rich[0].Text
	}
	data := make(map[string]any, len(x.Attributes))
	for _, a := range x.Attributes {
		data[a.Name] = a.Value
	}
	expanded := true
	if v, ok := data[keyExpanded]; ok {
		expanded = v == "true"
		delete(data, keyExpanded)
	}

	var err error
	if parentID == "" {
		_, err = m.SetRoot(x.ID, topic, data)
	} else {
		opts := &mind.AddOptions{Collapsed: !expanded}
		if x.Position != "" {
			opts.Direction = mind.ParseDirection(x.Position)
		}
		_, err = m.AddNode(parentID, x.ID, topic, data, opts)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", x.ID)
	}
	for i := range x.Children {
		if err := loadFreeMindNode(m, x.ID, &x.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodeFreeMind(m *mind.Mind) ([]byte, error) {
	if m.Root() == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mind map has no root")
	}
	doc := fmMap{Version: freeMindVersion, Nodes: []fmNode{buildFreeMindNode(m.Root())}}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode freemind")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func buildFreeMindNode(n *mind.Node) fmNode {
	topic := n.Topic
	x := fmNode{ID: n.ID(), Text: &topic}
	if p := n.Parent(); p != nil && p.IsRoot() {
		x.Position = sideName(n.Direction())
	}
	x.Attributes = append(x.Attributes, fmAttribute{Name: keyExpanded, Value: fmt.Sprint(n.Expanded)})
	for _, k := range slices.Sorted(maps.Keys(n.Data)) {
		x.Attributes = append(x.Attributes, fmAttribute{Name: k, Value: fmt.Sprint(n.Data[k])})
	}
	for _, c := range n.Children() {
		x.Children = append(x.Children, buildFreeMindNode(c))
	}
	return x
}
