package codec

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// borshCodec is a minimal Borsh (binary-object-representation-serializer-
// for-hashing) encoder/decoder covering the primitive and struct shapes
// ComponentMessage needs: fixed-width integers, bool, string, []byte,
// slices, and exported-field structs (including pointers, encoded as a
// one-byte presence flag followed by the pointee, matching Borsh's Option
// encoding). No Borsh library exists anywhere in the example corpus or its
// transitive dependency graph, so this is the one codec implemented
// directly against the wire format instead of through a third-party
// package.
type borshCodec struct{}

func init() { Register(borshCodec{}) }

func (borshCodec) Code() Code { return Borsh }

func (borshCodec) Marshal(v any) ([]byte, error) {
	buf := &borshWriter{}
	if err := buf.writeValue(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return buf.b, nil
}

func (borshCodec) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("codec: borsh requires a non-nil pointer, got %T", v)
	}
	r := &borshReader{b: data}
	if err := r.readValue(rv.Elem()); err != nil {
		return err
	}
	if len(r.b) != 0 {
		return fmt.Errorf("codec: borsh: %d trailing bytes", len(r.b))
	}
	return nil
}

type borshWriter struct{ b []byte }

func (w *borshWriter) writeValue(v reflect.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("codec: borsh: invalid value")
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			w.b = append(w.b, 1)
		} else {
			w.b = append(w.b, 0)
		}
	case reflect.Uint8:
		w.b = append(w.b, byte(v.Uint()))
	case reflect.Uint16:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(v.Uint()))
		w.b = append(w.b, tmp[:]...)
	case reflect.Uint32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v.Uint()))
		w.b = append(w.b, tmp[:]...)
	case reflect.Uint, reflect.Uint64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], v.Uint())
		w.b = append(w.b, tmp[:]...)
	case reflect.Int8:
		w.b = append(w.b, byte(v.Int()))
	case reflect.Int16:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(v.Int()))
		w.b = append(w.b, tmp[:]...)
	case reflect.Int32:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v.Int()))
		w.b = append(w.b, tmp[:]...)
	case reflect.Int, reflect.Int64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v.Int()))
		w.b = append(w.b, tmp[:]...)
	case reflect.String:
		s := v.String()
		w.writeLen(len(s))
		w.b = append(w.b, s...)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			w.writeLen(v.Len())
			w.b = append(w.b, v.Bytes()...)
			return nil
		}
		w.writeLen(v.Len())
		for i := 0; i < v.Len(); i++ {
			if err := w.writeValue(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Ptr:
		if v.IsNil() {
			w.b = append(w.b, 0)
			return nil
		}
		w.b = append(w.b, 1)
		return w.writeValue(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Type().Field(i)
			if f.PkgPath != "" {
				continue // unexported
			}
			if err := w.writeValue(v.Field(i)); err != nil {
				return fmt.Errorf("codec: borsh: field %s: %w", f.Name, err)
			}
		}
	default:
		return fmt.Errorf("codec: borsh: unsupported kind %s", v.Kind())
	}
	return nil
}

func (w *borshWriter) writeLen(n int) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	w.b = append(w.b, tmp[:]...)
}

type borshReader struct{ b []byte }

func (r *borshReader) take(n int) ([]byte, error) {
	if len(r.b) < n {
		return nil, fmt.Errorf("codec: borsh: unexpected end of input")
	}
	out := r.b[:n]
	r.b = r.b[n:]
	return out, nil
}

func (r *borshReader) readLen() (int, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

func (r *borshReader) readValue(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		b, err := r.take(1)
		if err != nil {
			return err
		}
		v.SetBool(b[0] != 0)
	case reflect.Uint8:
		b, err := r.take(1)
		if err != nil {
			return err
		}
		v.SetUint(uint64(b[0]))
	case reflect.Uint16:
		b, err := r.take(2)
		if err != nil {
			return err
		}
		v.SetUint(uint64(binary.LittleEndian.Uint16(b)))
	case reflect.Uint32:
		b, err := r.take(4)
		if err != nil {
			return err
		}
		v.SetUint(uint64(binary.LittleEndian.Uint32(b)))
	case reflect.Uint, reflect.Uint64:
		b, err := r.take(8)
		if err != nil {
			return err
		}
		v.SetUint(binary.LittleEndian.Uint64(b))
	case reflect.Int8:
		b, err := r.take(1)
		if err != nil {
			return err
		}
		v.SetInt(int64(int8(b[0])))
	case reflect.Int16:
		b, err := r.take(2)
		if err != nil {
			return err
		}
		v.SetInt(int64(int16(binary.LittleEndian.Uint16(b))))
	case reflect.Int32:
		b, err := r.take(4)
		if err != nil {
			return err
		}
		v.SetInt(int64(int32(binary.LittleEndian.Uint32(b))))
	case reflect.Int, reflect.Int64:
		b, err := r.take(8)
		if err != nil {
			return err
		}
		v.SetInt(int64(binary.LittleEndian.Uint64(b)))
	case reflect.String:
		n, err := r.readLen()
		if err != nil {
			return err
		}
		b, err := r.take(n)
		if err != nil {
			return err
		}
		v.SetString(string(b))
	case reflect.Slice:
		n, err := r.readLen()
		if err != nil {
			return err
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := r.take(n)
			if err != nil {
				return err
			}
			v.SetBytes(append([]byte(nil), b...))
			return nil
		}
		out := reflect.MakeSlice(v.Type(), n, n)
		for i := 0; i < n; i++ {
			if err := r.readValue(out.Index(i)); err != nil {
				return err
			}
		}
		v.Set(out)
	case reflect.Ptr:
		b, err := r.take(1)
		if err != nil {
			return err
		}
		if b[0] == 0 {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		v.Set(reflect.New(v.Type().Elem()))
		return r.readValue(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Type().Field(i)
			if f.PkgPath != "" {
				continue
			}
			if err := r.readValue(v.Field(i)); err != nil {
				return fmt.Errorf("codec: borsh: field %s: %w", f.Name, err)
			}
		}
	default:
		return fmt.Errorf("codec: borsh: unsupported kind %s", v.Kind())
	}
	return nil
}
