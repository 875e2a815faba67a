// Package format reads and writes mind maps in their interchange formats.
//
// # Overview
//
// Three formats are supported; all share a JSON envelope:
//
//	{
//	  "meta": {"name": "mindtree", "author": "", "version": "1"},
//	  "format": "node_tree",
//	  "data": ...
//	}
//
//   - [NodeTree]: data is the root node object, children nested inline
//   - [NodeArray]: data is a flat array of nodes linked by parentid
//   - [FreeMind]: data is a FreeMind XML string
//
// A bare FreeMind <map> document (a .mm file) is accepted as well and
// decodes with default metadata.
//
// # Node Fields
//
// Every node object carries id and topic. Optional fields:
//   - direction: "left" or "right", meaningful for children of the root only
//   - expanded: defaults to true
//   - selectedType: the hierarchy type name
//   - children (node_tree) or parentid and isroot (node_array)
//
// Any other key is node data. The camel-case keys backgroundColor and
// foregroundColor are normalized to background-color and foreground-color on
// read.
//
// # Usage
//
//	m, err := format.Decode(raw)                 // any format, sniffed
//	out, err := format.Encode(m, format.NodeArray)
//	m, err := format.ReadFile("map.mm")
//	err = format.WriteFile(m, format.NodeTree, "map.json")
//
// Decoding errors carry the INVALID_FORMAT code from [errors].
//
// [errors]: github.com/matzehuels/mindtree/pkg/errors
package format
