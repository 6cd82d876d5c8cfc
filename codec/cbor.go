package codec

import "github.com/fxamacker/cbor/v2"

// cborCodec is an enrichment from the wider example corpus
// (jordigilh-kubernaut's go.mod carries fxamacker/cbor/v2) rather than a
// teacher substitution: the teacher's own go.mod has no CBOR library.
type cborCodec struct{}

func init() { Register(cborCodec{}) }

func (cborCodec) Code() Code { return CBOR }

func (cborCodec) Marshal(v any) ([]byte, error)      { return cbor.Marshal(v) }
func (cborCodec) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }
