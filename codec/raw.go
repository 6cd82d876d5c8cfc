package codec

import "fmt"

// rawCodec passes []byte through unchanged; it is the only codec that
// does not round-trip arbitrary v (v must be []byte or *[]byte).
type rawCodec struct{}

func init() { Register(rawCodec{}) }

func (rawCodec) Code() Code { return Raw }

func (rawCodec) Marshal(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		return *b, nil
	default:
		return nil, fmt.Errorf("codec: raw requires []byte, got %T", v)
	}
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	switch p := v.(type) {
	case *[]byte:
		*p = append([]byte(nil), data...)
		return nil
	default:
		return fmt.Errorf("codec: raw requires *[]byte, got %T", v)
	}
}
