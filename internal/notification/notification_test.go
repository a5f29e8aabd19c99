package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsMessagesInOrder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.Send(context.Background(), Message{Kind: KindPaymentReceived, Destination: "v1", Body: "a"}))
	require.NoError(t, r.Send(context.Background(), Message{Kind: KindNudge, Destination: "u1", Body: "b"}))

	got := r.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, KindPaymentReceived, got[0].Kind)
	assert.Equal(t, KindNudge, got[1].Kind)
}

func TestNilLoggerNotifierIsNoop(t *testing.T) {
	var n *LoggerNotifier
	assert.NoError(t, n.Send(context.Background(), Message{Kind: KindNudge}))
}
