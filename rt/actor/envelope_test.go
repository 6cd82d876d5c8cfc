package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/airsstack/airssys/cmn/ids"
)

type dummyMsg struct{}

func (dummyMsg) MessageType() string { return "dummy" }
func (dummyMsg) Priority() int       { return 3 }

func TestEnvelopeNeverExpiresWithZeroTTL(t *testing.T) {
	env := NewEnvelope(dummyMsg{})
	require.False(t, env.Expired(time.Now().Add(100*time.Hour)))
}

func TestEnvelopeExpiresAfterTTL(t *testing.T) {
	env := NewEnvelope(dummyMsg{}).WithTTL(time.Millisecond)
	require.False(t, env.Expired(env.CreatedAt))
	require.True(t, env.Expired(env.CreatedAt.Add(time.Second)))
}

func TestEnvelopeCarriesPriorityFromPayload(t *testing.T) {
	env := NewEnvelope(dummyMsg{})
	require.Equal(t, 3, env.Priority)
}

func TestAddressFormatting(t *testing.T) {
	id := ids.NewActorId()
	named := Named(id, "worker")
	require.True(t, named.IsNamed())
	require.Contains(t, named.String(), "worker#")

	anon := Anonymous(id)
	require.False(t, anon.IsNamed())
	require.Equal(t, string(id), anon.String())
}
