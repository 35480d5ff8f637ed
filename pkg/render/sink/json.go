package sink

import "github.com/matzehuels/occupancy/pkg/layout"

// RenderJSON serializes the document as indented JSON.
func RenderJSON(doc layout.Document) ([]byte, error) {
	return layout.Marshal(doc)
}
