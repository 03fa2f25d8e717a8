package debugstream_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"cdr.dev/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/ndlayout/engine/errs"
	"github.com/ndlayout/engine/internal/debugstream"
)

func TestBroadcastDeliversToConnectedSubscriber(t *testing.T) {
	hub := debugstream.NewHub(slog.Make())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// give ServeHTTP a moment to register the subscriber before broadcasting.
	time.Sleep(50 * time.Millisecond)
	hub.Diagnostic("structure", errs.Diagnostic{Kind: errs.NumericDegenerate, Stage: "structure", Message: "test"})

	var got debugstream.Event
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, "structure", got.Stage)
	require.NotNil(t, got.Diagnostic)
	assert.Equal(t, errs.NumericDegenerate, got.Diagnostic.Kind)
}

func TestStageTimerBroadcastsDuration(t *testing.T) {
	hub := debugstream.NewHub(slog.Make())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	time.Sleep(50 * time.Millisecond)
	done := hub.StageTimer("route")
	done()

	var got debugstream.Event
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, "route", got.Stage)
	assert.GreaterOrEqual(t, got.DurationMS, 0.0)
}
