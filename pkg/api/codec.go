package api

import "encoding/json"

// JSONCodec encodes the plain Go messages in this package for Connect.
// Register it on both handlers and clients with connect.WithCodec.
type JSONCodec struct{}

// Name is the codec name used in the Content-Type, e.g. application/json.
func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
