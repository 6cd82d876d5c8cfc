package audit

import (
	"fmt"
	"io"
	"sync"

	"github.com/tinylib/msgp/msgp"
)

// MsgpSink appends records as a stream of MessagePack-encoded values to w,
// for audit destinations where BuntSink's queryability isn't needed and
// RingSink's in-memory retention isn't enough — e.g. piping to a
// long-term log shipper that reads a flat binary stream.
type MsgpSink struct {
	mu sync.Mutex
	w  *msgp.Writer
}

// NewMsgpSink wraps w in a buffered msgp.Writer. Callers own w's lifecycle
// (closing/flushing the underlying file or connection); call Flush before
// that to ensure buffered records are written out.
func NewMsgpSink(w io.Writer) *MsgpSink {
	return &MsgpSink{w: msgp.NewWriter(w)}
}

func (s *MsgpSink) Record(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := r.EncodeMsg(s.w); err != nil {
		return fmt.Errorf("audit: encode msgp record: %w", err)
	}
	return nil
}

// Flush writes any buffered bytes to the underlying io.Writer.
func (s *MsgpSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}
