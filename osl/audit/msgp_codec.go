package audit

import (
	"github.com/tinylib/msgp/msgp"
)

// recordFields is the fixed field order EncodeMsg/DecodeMsg agree on,
// mirroring the teacher's dsort/extract generated codecs but hand-written
// since Record's JSON shape (spec.md §6) is the source of truth, not a
// struct msgp could be run against.
var recordFields = [...]string{
	"timestamp", "kind", "operation_id", "principal",
	"session_id", "decision", "policy_name", "metadata",
}

// EncodeMsg writes r in MessagePack binary form, for sinks (e.g. MsgpSink)
// that trade BuntSink's JSON text for a denser on-disk encoding.
func (r Record) EncodeMsg(en *msgp.Writer) error {
	if err := en.WriteMapHeader(uint32(len(recordFields))); err != nil {
		return msgp.WrapError(err)
	}
	for _, f := range recordFields {
		if err := en.WriteString(f); err != nil {
			return msgp.WrapError(err, f)
		}
		var err error
		switch f {
		case "timestamp":
			err = en.WriteTime(r.Timestamp)
		case "kind":
			err = en.WriteInt(int(r.Kind))
		case "operation_id":
			err = en.WriteString(r.OperationID)
		case "principal":
			err = en.WriteString(r.Principal)
		case "session_id":
			err = en.WriteString(r.SessionID)
		case "decision":
			err = en.WriteString(r.Decision)
		case "policy_name":
			err = en.WriteString(r.PolicyName)
		case "metadata":
			err = writeStringMap(en, r.Metadata)
		}
		if err != nil {
			return msgp.WrapError(err, f)
		}
	}
	return nil
}

func writeStringMap(en *msgp.Writer, m map[string]string) error {
	if err := en.WriteMapHeader(uint32(len(m))); err != nil {
		return err
	}
	for k, v := range m {
		if err := en.WriteString(k); err != nil {
			return err
		}
		if err := en.WriteString(v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsg reads a Record previously written by EncodeMsg. Unknown map
// keys are skipped, so future fields can be added without breaking older
// readers.
func (r *Record) DecodeMsg(dc *msgp.Reader) error {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return msgp.WrapError(err)
	}
	for i := uint32(0); i < n; i++ {
		field, err := dc.ReadMapKeyPtr()
		if err != nil {
			return msgp.WrapError(err)
		}
		switch string(field) {
		case "timestamp":
			r.Timestamp, err = dc.ReadTime()
		case "kind":
			var k int
			k, err = dc.ReadInt()
			r.Kind = EventKind(k)
		case "operation_id":
			r.OperationID, err = dc.ReadString()
		case "principal":
			r.Principal, err = dc.ReadString()
		case "session_id":
			r.SessionID, err = dc.ReadString()
		case "decision":
			r.Decision, err = dc.ReadString()
		case "policy_name":
			r.PolicyName, err = dc.ReadString()
		case "metadata":
			r.Metadata, err = readStringMap(dc)
		default:
			err = dc.Skip()
		}
		if err != nil {
			return msgp.WrapError(err, string(field))
		}
	}
	return nil
}

func readStringMap(dc *msgp.Reader) (map[string]string, error) {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		k, err := dc.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := dc.ReadString()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
