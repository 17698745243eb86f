package kafka

import "encoding/json"

func EncodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func DecodeJSON(b []byte, v any) error {
	return json.Unmarshal(b, v)
}
