package codec

import jsoniter "github.com/json-iterator/go"

// jsonCodec uses json-iterator/go (teacher's direct dependency), a
// drop-in encoding/json replacement.
type jsonCodec struct{}

func init() { Register(jsonCodec{}) }

var api = jsoniter.ConfigCompatibleWithStandardLibrary

func (jsonCodec) Code() Code { return JSON }

func (jsonCodec) Marshal(v any) ([]byte, error)      { return api.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }
