package trust

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/buntdb"
	"golang.org/x/sync/singleflight"

	"github.com/airsstack/airssys/osl/audit"
	"github.com/airsstack/airssys/wasmhost"
)

// persistedDecision is the buntdb-stored record for an Approved/Denied
// fingerprint, keyed by fingerprint directly (not timestamp-ordered, since
// lookups are always by exact fingerprint).
type persistedDecision struct {
	Kind      DecisionKind `json:"kind"`
	Auto      bool         `json:"auto,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	DecidedAt time.Time    `json:"decided_at"`
}

// ApprovalWorkflow implements spec.md §4.7's installation approval state
// machine: Pending → Reviewing → {Approved, Denied}, with Trusted sources
// auto-approved and DevMode sources bypassed (and never persisted).
// Concurrent identical first-requests for the same fingerprint are
// collapsed via golang.org/x/sync/singleflight so only one Pending entry /
// audit trail is produced, strengthening invariant 5 ("stable under
// re-request") to also cover concurrent first-requests.
type ApprovalWorkflow struct {
	registry *Registry
	db       *buntdb.DB
	sink     audit.Sink
	auth     *AdminAuthenticator

	sf singleflight.Group

	mu      sync.Mutex
	known   map[uint64]struct{} // QuickHash pre-check set
	pending map[string]*PendingRequest
	queue   []string // fingerprint order, FIFO
}

// NewApprovalWorkflow opens (or reuses) a buntdb database at dbPath for
// persisted Approved/Denied decisions. Pass ":memory:" for a
// process-local, non-persistent store (e.g. tests).
func NewApprovalWorkflow(registry *Registry, dbPath string, sink audit.Sink, auth *AdminAuthenticator) (*ApprovalWorkflow, error) {
	db, err := buntdb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("trust: open decision store: %w", err)
	}
	return &ApprovalWorkflow{
		registry: registry,
		db:       db,
		sink:     sink,
		auth:     auth,
		known:    make(map[uint64]struct{}),
		pending:  make(map[string]*PendingRequest),
	}, nil
}

func (w *ApprovalWorkflow) Close() error { return w.db.Close() }

func (w *ApprovalWorkflow) lookupPersisted(fingerprint string) (persistedDecision, bool) {
	var out persistedDecision
	var found bool
	_ = w.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(fingerprint)
		if err != nil {
			return nil
		}
		if json.Unmarshal([]byte(v), &out) == nil {
			found = true
		}
		return nil
	})
	return out, found
}

func (w *ApprovalWorkflow) persist(fingerprint string, d persistedDecision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.known[QuickHash(fingerprint)] = struct{}{}
	w.mu.Unlock()
	return w.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(fingerprint, string(data), nil)
		return err
	})
}

func (w *ApprovalWorkflow) audit(kind audit.EventKind, fingerprint, decision, reason string) {
	if w.sink == nil {
		return
	}
	_ = w.sink.Record(audit.Record{
		Timestamp:   time.Now().UTC(),
		Kind:        kind,
		OperationID: fingerprint,
		Decision:    decision,
		Metadata:    map[string]string{"reason": reason},
	})
}

// RequestApproval resolves an installation request to a decision, per
// spec.md §4.7's approval algorithm.
func (w *ApprovalWorkflow) RequestApproval(id wasmhost.ComponentId, source ComponentSource, capabilities []string) (ApprovalDecision, error) {
	fingerprint := Fingerprint(id, source, capabilities)

	result, err, _ := w.sf.Do(fingerprint, func() (interface{}, error) {
		return w.resolve(id, source, capabilities, fingerprint)
	})
	if err != nil {
		return ApprovalDecision{}, err
	}
	return result.(ApprovalDecision), nil
}

func (w *ApprovalWorkflow) resolve(id wasmhost.ComponentId, source ComponentSource, capabilities []string, fingerprint string) (ApprovalDecision, error) {
	w.mu.Lock()
	_, maybeKnown := w.known[QuickHash(fingerprint)]
	w.mu.Unlock()

	if maybeKnown {
		if pd, ok := w.lookupPersisted(fingerprint); ok {
			return ApprovalDecision{Kind: pd.Kind, Auto: pd.Auto, Reason: pd.Reason, DecidedAt: pd.DecidedAt}, nil
		}
	}

	level := w.registry.Resolve(source)
	switch level {
	case Trusted:
		d := persistedDecision{Kind: Approved, Auto: true, DecidedAt: time.Now().UTC()}
		if err := w.persist(fingerprint, d); err != nil {
			return ApprovalDecision{}, err
		}
		w.audit(audit.AccessGranted, fingerprint, "approved", "trusted source")
		return ApprovalDecision{Kind: Approved, Auto: true, DecidedAt: d.DecidedAt}, nil

	case DevMode:
		// never persisted: must re-warn every run.
		w.audit(audit.SecurityViolation, fingerprint, "bypassed", "devmode bypass")
		return ApprovalDecision{Kind: Bypassed, DevMode: true, DecidedAt: time.Now().UTC()}, nil

	default: // Unknown
		w.mu.Lock()
		defer w.mu.Unlock()
		if existing, ok := w.pending[fingerprint]; ok {
			return ApprovalDecision{Kind: PendingReview, RequestID: existing.RequestID, QueuePosition: w.queuePositionLocked(fingerprint)}, nil
		}
		req := &PendingRequest{
			RequestID:    uuid.NewString(),
			Fingerprint:  fingerprint,
			ComponentID:  id.String(),
			Source:       source,
			Capabilities: capabilities,
			State:        StatePending,
			QueuedAt:     time.Now().UTC(),
		}
		w.pending[fingerprint] = req
		w.queue = append(w.queue, fingerprint)
		w.audit(audit.AuthenticationRequired, fingerprint, "pending_review", "unknown source")
		return ApprovalDecision{Kind: PendingReview, RequestID: req.RequestID, QueuePosition: len(w.queue)}, nil
	}
}

func (w *ApprovalWorkflow) queuePositionLocked(fingerprint string) int {
	for i, f := range w.queue {
		if f == fingerprint {
			return i + 1
		}
	}
	return 0
}

// Review transitions a Pending request to Reviewing, authorized by
// adminToken.
func (w *ApprovalWorkflow) Review(adminToken, fingerprint string) error {
	admin, err := w.auth.Verify(adminToken)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	req, ok := w.pending[fingerprint]
	if !ok {
		return fmt.Errorf("trust: no pending request for fingerprint %s", fingerprint)
	}
	if req.State != StatePending {
		return fmt.Errorf("trust: invalid transition %s -> reviewing", req.State)
	}
	req.State = StateReviewing
	req.Reviewer = admin
	return nil
}

// Approve transitions a Reviewing request to Approved, persisting the
// decision.
func (w *ApprovalWorkflow) Approve(adminToken, fingerprint string) error {
	admin, err := w.auth.Verify(adminToken)
	if err != nil {
		return err
	}
	w.mu.Lock()
	req, ok := w.pending[fingerprint]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("trust: no pending request for fingerprint %s", fingerprint)
	}
	if req.State != StateReviewing {
		w.mu.Unlock()
		return fmt.Errorf("trust: invalid transition %s -> approved", req.State)
	}
	req.State = StateApproved
	req.Reviewer = admin
	w.removeFromQueueLocked(fingerprint)
	delete(w.pending, fingerprint)
	w.mu.Unlock()

	d := persistedDecision{Kind: Approved, DecidedAt: time.Now().UTC()}
	if err := w.persist(fingerprint, d); err != nil {
		return err
	}
	w.audit(audit.AccessGranted, fingerprint, "approved", "admin: "+admin)
	return nil
}

// Deny transitions a Reviewing request to Denied, persisting the
// decision with reason.
func (w *ApprovalWorkflow) Deny(adminToken, fingerprint, reason string) error {
	admin, err := w.auth.Verify(adminToken)
	if err != nil {
		return err
	}
	w.mu.Lock()
	req, ok := w.pending[fingerprint]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("trust: no pending request for fingerprint %s", fingerprint)
	}
	if req.State != StateReviewing {
		w.mu.Unlock()
		return fmt.Errorf("trust: invalid transition %s -> denied", req.State)
	}
	req.State = StateDenied
	req.Reviewer = admin
	req.Reason = reason
	w.removeFromQueueLocked(fingerprint)
	delete(w.pending, fingerprint)
	w.mu.Unlock()

	d := persistedDecision{Kind: Denied, Reason: reason, DecidedAt: time.Now().UTC()}
	if err := w.persist(fingerprint, d); err != nil {
		return err
	}
	w.audit(audit.AccessDenied, fingerprint, "denied", reason)
	return nil
}

func (w *ApprovalWorkflow) removeFromQueueLocked(fingerprint string) {
	for i, f := range w.queue {
		if f == fingerprint {
			w.queue = append(w.queue[:i], w.queue[i+1:]...)
			return
		}
	}
}
