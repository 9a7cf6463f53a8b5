package model

import "encoding/json"

func marshalWithType(v any, t Expr) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if t != nil {
		typ, err := json.Marshal(t.String())
		if err != nil {
			return nil, err
		}
		m["type"] = typ
	}
	return json.Marshal(m)
}
