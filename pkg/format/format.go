package format

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// Format names an interchange format.
type Format string

const (
	NodeTree  Format = "node_tree"
	NodeArray Format = "node_array"
	FreeMind  Format = "freemind"
)

// Formats lists the supported formats in preference order.
var Formats = []Format{NodeTree, NodeArray, FreeMind}

// Default metadata for documents that omit it.
const (
	DefaultName    = "mindtree"
	DefaultAuthor  = ""
	DefaultVersion = "1"
)

// Node object keys owned by the codecs rather than by node data.
const (
	keyID           = "id"
	keyTopic        = "topic"
	keyChildren     = "children"
	keyDirection    = "direction"
	keyExpanded     = "expanded"
	keySelectedType = "selectedType"
	keyParentID     = "parentid"
	keyIsRoot       = "isroot"
	keyIsCreated    = "isCreated"
)

// camelKeys maps legacy camel-case data keys to their canonical names.
var camelKeys = map[string]string{
	"backgroundColor": "background-color",
	"foregroundColor": "foreground-color",
}

// Meta describes a document.
type Meta struct {
	Name    string `json:"name" bson:"name"`
	Author  string `json:"author" bson:"author"`
	Version string `json:"version" bson:"version"`
}

// Document is the JSON envelope shared by every format.
type Document struct {
	Meta   Meta            `json:"meta" bson:"meta"`
	Format Format          `json:"format" bson:"format"`
	Data   json.RawMessage `json:"data" bson:"data"`
}

// ParseFormat resolves a format name. The legacy spelling "nodeTree" is
// accepted for [NodeTree].
func ParseFormat(s string) (Format, error) {
	switch strings.TrimSpace(s) {
	case string(NodeTree), "nodeTree", "tree":
		return NodeTree, nil
	case string(NodeArray), "nodeArray", "array":
		return NodeArray, nil
	case string(FreeMind), "mm":
		return FreeMind, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
}

// ForPath picks a format from a file extension: .mm is [FreeMind],
// everything else [NodeTree].
func ForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".mm") {
		return FreeMind
	}
	return NodeTree
}

// Detect sniffs the format of raw input: a leading '<' means a bare
// FreeMind document, otherwise the envelope's format field decides.
func Detect(data []byte) (Format, error) {
	trimmed := trimInput(data)
	if len(trimmed) == 0 {
		return "", errors.New(errors.ErrCodeInvalidFormat, "empty input")
	}
	if trimmed[0] == '<' {
		return FreeMind, nil
	}
	var probe struct {
		Format string `json:"format"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode envelope")
	}
	if probe.Format == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "missing format field")
	}
	return ParseFormat(probe.Format)
}

// Decode parses raw input in any supported format.
func Decode(data []byte) (*mind.Mind, error) {
	trimmed := trimInput(data)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return decodeFreeMind(trimmed, Meta{})
	}
	doc, err := UnmarshalDocument(trimmed)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// Encode serializes m. [FreeMind] produces a bare XML document; the JSON
// formats produce an indented envelope.
func Encode(m *mind.Mind, f Format) ([]byte, error) {
	if f == FreeMind {
		return encodeFreeMind(m)
	}
	doc, err := ToDocument(m, f)
	if err != nil {
		return nil, err
	}
	return MarshalDocument(doc)
}

// UnmarshalDocument decodes a JSON envelope.
func UnmarshalDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode envelope")
	}
	f, err := ParseFormat(string(doc.Format))
	if err != nil {
		return nil, err
	}
	doc.Format = f
	return &doc, nil
}

// MarshalDocument encodes an envelope as indented JSON.
func MarshalDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return buf.Bytes(), nil
}

// FromDocument builds a tree from an envelope. Missing metadata takes the
// defaults.
func FromDocument(doc *Document) (*mind.Mind, error) {
	switch doc.Format {
	case NodeTree, "nodeTree":
		return decodeNodeTree(doc.Data, doc.Meta)
	case NodeArray:
		return decodeNodeArray(doc.Data, doc.Meta)
	case FreeMind:
		var xmlText string
		if err := json.Unmarshal(doc.Data, &xmlText); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "freemind data must be an XML string")
		}
		return decodeFreeMind([]byte(xmlText), doc.Meta)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", doc.Format)
}

// ToDocument wraps m in an envelope of format f.
func ToDocument(m *mind.Mind, f Format) (*Document, error) {
	if m.Root() == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mind map has no root")
	}
	var (
		data any
		err  error
	)
	switch f {
	case NodeTree:
		data = buildTreeNode(m.Root())
	case NodeArray:
		data = buildArray(m.Root())
	case FreeMind:
		var xmlText []byte
		xmlText, err = encodeFreeMind(m)
		data = string(xmlText)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode %s data", f)
	}
	return &Document{Meta: metaOf(m), Format: f, Data: raw}, nil
}

// ReadFile reads and decodes a map file in any supported format.
func ReadFile(path string) (*mind.Mind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	return Decode(data)
}

// WriteFile encodes m as f and writes it to path with 0644 permissions.
func WriteFile(m *mind.Mind, f Format, path string) error {
	data, err := Encode(m, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// ===== Shared helpers =====

func trimInput(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return bytes.TrimSpace(data)
}

func newMind(meta Meta) *mind.Mind {
	m := mind.New()
	m.Name = meta.Name
	if m.Name == "" {
		m.Name = DefaultName
	}
	m.Author = meta.Author
	m.Version = meta.Version
	if m.Version == "" {
		m.Version = DefaultVersion
	}
	return m
}

func metaOf(m *mind.Mind) Meta {
	meta := Meta{Name: m.Name, Author: m.Author, Version: m.Version}
	if meta.Name == "" {
		meta.Name = DefaultName
	}
	if meta.Version == "" {
		meta.Version = DefaultVersion
	}
	return meta
}

// nodeFields is a decoded node object split into tree fields and data.
type nodeFields struct {
	id, topic, parentID, selectedType string
	direction                         mind.Direction
	hasDirection                      bool
	expanded                          bool
	isRoot                            bool
	children                          []any
	data                              map[string]any
}

// splitNode separates the codec-owned keys of obj from node data.
func splitNode(obj map[string]any) (nodeFields, error) {
	f := nodeFields{expanded: true, data: make(map[string]any)}
	id, err := scalarString(obj[keyID])
	if err != nil || id == "" {
		return f, errors.New(errors.ErrCodeInvalidFormat, "node without a valid id")
	}
	f.id = id
	for k, v := range obj {
		switch k {
		case keyID:
		case keyTopic:
			f.topic, _ = scalarString(v)
		case keyParentID:
			f.parentID, _ = scalarString(v)
		case keySelectedType:
			f.selectedType, _ = v.(string)
		case keyDirection:
			if s, _ := scalarString(v); s != "" {
				f.direction = mind.ParseDirection(s)
				f.hasDirection = true
			}
		case keyExpanded:
			if b, ok := v.(bool); ok {
				f.expanded = b
			}
		case keyIsRoot:
			f.isRoot, _ = v.(bool)
		case keyIsCreated:
		case keyChildren:
			f.children, _ = v.([]any)
		default:
			if canon, ok := camelKeys[k]; ok {
				k = canon
			}
			f.data[k] = v
		}
	}
	return f, nil
}

// scalarString accepts strings and JSON numbers, which some producers use
// for ids.
func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case nil:
		return "", nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "expected a string, got %T", v)
}

// nodeObject renders n's fields and data as a JSON object.
func nodeObject(n *mind.Node) map[string]any {
	obj := make(map[string]any, len(n.Data)+5)
	maps.Copy(obj, n.Data)
	obj[keyID] = n.ID()
	obj[keyTopic] = n.Topic
	obj[keyExpanded] = n.Expanded
	if n.SelectedType != "" {
		obj[keySelectedType] = n.SelectedType
	}
	if p := n.Parent(); p != nil && p.IsRoot() {
		obj[keyDirection] = sideName(n.Direction())
	}
	return obj
}

func sideName(d mind.Direction) string {
	if d == mind.Left {
		return "left"
	}
	return "right"
}
