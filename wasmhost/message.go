package wasmhost

import "github.com/airsstack/airssys/rt/actor"

// MessageKind tags ComponentMessage's variant, mirroring spec.md §3.4's
// tagged-union ComponentMessage.
type MessageKind int

const (
	Invoke MessageKind = iota
	InvokeResult
	InterComponent
	InterComponentWithCorrelation
	Shutdown
	HealthCheck
	HealthStatusMsg
)

func (k MessageKind) String() string {
	switch k {
	case Invoke:
		return "invoke"
	case InvokeResult:
		return "invoke_result"
	case InterComponent:
		return "inter_component"
	case InterComponentWithCorrelation:
		return "inter_component_with_correlation"
	case Shutdown:
		return "shutdown"
	case HealthCheck:
		return "health_check"
	case HealthStatusMsg:
		return "health_status"
	default:
		return "unknown"
	}
}

// ComponentMessage is the single message type every ComponentActor
// exchanges, implementing rt/actor.Message so it can flow through
// rt/mailbox and rt/broker unchanged.
type ComponentMessage struct {
	Kind MessageKind

	// Invoke
	Function string
	Args     []byte // multicodec-prefixed

	// InvokeResult
	Result []byte // multicodec-prefixed
	Err    string

	// InterComponent / InterComponentWithCorrelation
	Sender        ComponentId
	To            ComponentId
	Payload       []byte // multicodec-prefixed
	CorrelationID string

	// HealthStatus
	Health HealthReport

	priority int
}

func (m ComponentMessage) MessageType() string { return m.Kind.String() }
func (m ComponentMessage) Priority() int        { return m.priority }

// WithPriority returns a copy of m with its priority set, as reported by
// Priority. The rt mailboxes deliver in FIFO order and do not reorder
// messages by priority.
func (m ComponentMessage) WithPriority(p int) ComponentMessage {
	m.priority = p
	return m
}

var _ actor.Message = ComponentMessage{}
