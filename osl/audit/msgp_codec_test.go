package audit_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/airsstack/airssys/osl/audit"
)

func TestMsgpRoundTrip(t *testing.T) {
	in := audit.Record{
		Timestamp:   time.Now().UTC().Truncate(time.Millisecond),
		Kind:        audit.AccessDenied,
		OperationID: "op-1",
		Principal:   "acme/widget",
		SessionID:   "sess-1",
		Decision:    "denied",
		PolicyName:  "default-deny",
		Metadata:    map[string]string{"reason": "no matching rule"},
	}

	var buf bytes.Buffer
	w := msgp.NewWriter(&buf)
	require.NoError(t, in.EncodeMsg(w))
	require.NoError(t, w.Flush())

	var out audit.Record
	r := msgp.NewReader(&buf)
	require.NoError(t, out.DecodeMsg(r))

	assert.True(t, in.Timestamp.Equal(out.Timestamp))
	assert.Equal(t, in.Kind, out.Kind)
	assert.Equal(t, in.OperationID, out.OperationID)
	assert.Equal(t, in.Principal, out.Principal)
	assert.Equal(t, in.Decision, out.Decision)
	assert.Equal(t, in.PolicyName, out.PolicyName)
	assert.Equal(t, in.Metadata, out.Metadata)
}

func TestMsgpSinkWritesMultipleRecords(t *testing.T) {
	var buf bytes.Buffer
	sink := audit.NewMsgpSink(&buf)

	require.NoError(t, sink.Record(audit.Record{Kind: audit.AccessGranted, OperationID: "a"}))
	require.NoError(t, sink.Record(audit.Record{Kind: audit.AccessDenied, OperationID: "b"}))
	require.NoError(t, sink.Flush())

	r := msgp.NewReader(&buf)
	var first, second audit.Record
	require.NoError(t, first.DecodeMsg(r))
	require.NoError(t, second.DecodeMsg(r))

	assert.Equal(t, "a", first.OperationID)
	assert.Equal(t, "b", second.OperationID)
}
