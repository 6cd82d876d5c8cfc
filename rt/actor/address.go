package actor

import "github.com/airsstack/airssys/cmn/ids"

// Address identifies an actor for addressed delivery (mailbox lookups,
// reply_to routing). A Named address additionally carries a human-readable
// name used in logs and supervision events; Anonymous actors carry only
// their id.
type Address struct {
	ID   ids.ActorId
	Name string // empty for an Anonymous address
}

// Named constructs an Address with a display name.
func Named(id ids.ActorId, name string) Address { return Address{ID: id, Name: name} }

// Anonymous constructs an Address with no display name.
func Anonymous(id ids.ActorId) Address { return Address{ID: id} }

// IsNamed reports whether a is a Named address.
func (a Address) IsNamed() bool { return a.Name != "" }

func (a Address) String() string {
	if a.IsNamed() {
		return a.Name + "#" + string(a.ID)
	}
	return string(a.ID)
}
