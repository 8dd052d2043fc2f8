package lex

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// api is sonic configured for encoding/json compatibility, so the custom
// session marshalers are honored.
var api = sonic.ConfigStd

// DecodeEvent reads one event from r.
func DecodeEvent(r io.Reader) (*Event, error) {
	var e Event
	if err := api.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// UnmarshalEvent decodes one event from data.
func UnmarshalEvent(data []byte) (*Event, error) {
	var e Event
	if err := api.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// EncodeResponse writes resp to w as JSON.
func EncodeResponse(w io.Writer, resp Response) error {
	if err := api.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}

// MarshalResponse encodes resp as JSON.
func MarshalResponse(resp Response) ([]byte, error) {
	data, err := api.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return data, nil
}
