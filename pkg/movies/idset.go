package movies

import (
	"encoding/json"
	"strings"
)

// DecodeIDSet extracts the "id" attribute of every object in an embedded
// list field such as genres or production_companies. Exports of the dataset
// write these fields with Python-style single quotes, e.g.
//
//	[{'id': 28, 'name': 'Action'}, {'id': 12, 'name': 'Adventure'}]
//
// Single quotes are rewritten to double quotes before decoding. ok is false
// when the text is not a JSON list after normalization. Elements that are not
// objects or carry no integer id are skipped.
func DecodeIDSet(s string) (ids IDSet, ok bool) {
	normalized := strings.ReplaceAll(s, "'", `"`)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(normalized), &items); err != nil {
		return nil, false
	}

	ids = make(IDSet, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		raw, found := obj["id"]
		if !found {
			continue
		}
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, true
}

// IDSetOrEmpty is DecodeIDSet with malformed input treated as "no
// associations".
func IDSetOrEmpty(s string) IDSet {
	ids, ok := DecodeIDSet(s)
	if !ok {
		return IDSet{}
	}
	return ids
}
