package cart

import (
	"encoding/json"
	"fmt"
)

const schemaVersion = 1

type document struct {
	Version int    `json:"version"`
	Lines   []Line `json:"lines"`
}

func encode(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(document{Version: schemaVersion, Lines: lines})
}

func decode(data []byte) ([]Line, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if doc.Version != schemaVersion {
		return nil, fmt.Errorf("unsupported cart schema version %d", doc.Version)
	}
	for i, l := range doc.Lines {
		if l.ProductID == "" || l.Quantity < 1 {
			return nil, fmt.Errorf("invalid cart line %+v", l)
		}
		doc.Lines[i].Quantity = min(l.Quantity, MaxQuantity)
	}
	return doc.Lines, nil
}
