package format_test

import (
	"fmt"

	"github.com/matzehuels/mindtree/pkg/format"
	"github.com/matzehuels/mindtree/pkg/mind"
)

func ExampleEncode() {
	m := mind.New()
	_, _ = m.SetRoot("root", "Plan", nil)
	_, _ = m.AddNode("root", "a", "Research", nil, &mind.AddOptions{Direction: mind.Left})

	out, err := format.Encode(m, format.NodeTree)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(string(out))
	// Output:
	// {
	//   "meta": {
	//     "name": "mindtree",
	//     "author": "",
	//     "version": "1"
	//   },
	//   "format": "node_tree",
	//   "data": {
	//     "children": [
	//       {
	//         "direction": "left",
	//         "expanded": true,
	//         "id": "a",
	//         "topic": "Research"
	//       }
	//     ],
	//     "expanded": true,
	//     "id": "root",
	//     "topic": "Plan"
	//   }
	// }
}

func ExampleDecode() {
	raw := `{"format":"node_array","data":[
		{"id":"b","topic":"Beta","parentid":"root"},
		{"id":"root","topic":"Root","isroot":true},
		{"id":"a","topic":"Alpha","parentid":"root","direction":"left"}
	]}`
	m, err := format.Decode([]byte(raw))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, c := range m.Root().Children() {
		fmt.Println(c.ID(), c.Topic, c.Direction())
	}
	// Output:
	// b Beta right
	// a Alpha left
}
