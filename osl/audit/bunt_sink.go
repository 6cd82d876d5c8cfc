package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/buntdb"
)

// BuntSink persists audit records to a tidwall/buntdb database (the
// teacher's direct dependency), one JSON document per record keyed by a
// timestamp-ordered key so a time-range scan is a simple ascending
// iteration — grounded on the teacher's cmn/jsp file-persistence idiom,
// adapted here to an indexed embedded store instead of whole-file rewrites.
type BuntSink struct {
	db *buntdb.DB
}

// OpenBuntSink opens (creating if absent) a buntdb audit database at path.
// Pass ":memory:" for a process-local, non-persistent instance.
func OpenBuntSink(path string) (*BuntSink, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open buntdb at %s: %w", path, err)
	}
	if err := db.CreateIndex("by_time", "*", buntdb.IndexJSON("timestamp")); err != nil && err != buntdb.ErrIndexExists {
		return nil, fmt.Errorf("audit: create index: %w", err)
	}
	return &BuntSink{db: db}, nil
}

func (s *BuntSink) Close() error { return s.db.Close() }

func (s *BuntSink) Record(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("audit: marshal record: %w", err)
	}
	key := fmt.Sprintf("audit:%020d:%s", r.Timestamp.UnixNano(), r.OperationID)
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(data), nil)
		return err
	})
}

// Since returns every record whose Timestamp is >= t, ordered by time.
func (s *BuntSink) Since(t time.Time) ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("by_time", func(key, value string) bool {
			var r Record
			if json.Unmarshal([]byte(value), &r) == nil && !r.Timestamp.Before(t) {
				out = append(out, r)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
