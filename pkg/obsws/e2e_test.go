package obsws_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
	"github.com/LLIEPJIOK/obs-remote/pkg/obsws/obstest"
)

func setupTestServer(t *testing.T, cfg obstest.Config) *obstest.Server {
	t.Helper()

	server := obstest.NewServer(cfg)

	server.Handle("Echo", func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return args, nil
	})

	server.Handle("Slow", func(ctx context.Context, args map[string]any) (map[string]any, error) {
		time.Sleep(100 * time.Millisecond)
		return map[string]any{"done": true}, nil
	})

	t.Cleanup(server.Close)

	return server
}

func connectSession(t *testing.T, server *obstest.Server, password string, sink obsws.EventSink) *obsws.Session {
	t.Helper()

	cfg := obsws.DefaultSessionConfig(server.URL())
	cfg.EventSink = sink

	session := obsws.NewSession(cfg)
	require.NoError(t, session.Connect(context.Background(), password))

	t.Cleanup(func() {
		_ = session.Close()
	})

	return session
}

func TestEndToEnd_Authentication(t *testing.T) {
	server := setupTestServer(t, obstest.Config{Password: "p", Salt: "S", Challenge: "C"})

	session := connectSession(t, server, "p", nil)

	requests := server.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, obsws.RequestGetAuthRequired, requests[0].Type)
	assert.Equal(t, "1", requests[0].ID)
	assert.Equal(t, obsws.RequestAuthenticate, requests[1].Type)
	assert.Equal(t, "2", requests[1].ID)
	assert.Equal(t, "Bxluv963ti1MHqMK2HJPuGmaWdwWH0DMz2nsLo0IQLE=", requests[1].Args["auth"])

	resp, err := session.Call(context.Background(), "Echo", obsws.Args{"message": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Field("message").String())
	assert.Equal(t, obsws.StatusOK, resp.Status())
}

func TestEndToEnd_WrongPassword(t *testing.T) {
	server := setupTestServer(t, obstest.Config{Password: "p"})

	session := obsws.NewSession(obsws.DefaultSessionConfig(server.URL()))
	err := session.Connect(context.Background(), "not-p")

	require.ErrorIs(t, err, obsws.ErrAuthFailed)
	assert.True(t, session.IsClosed())

	_, err = session.Call(context.Background(), "Echo", nil)
	assert.ErrorIs(t, err, obsws.ErrConnectionClosed)
}

func TestEndToEnd_NoAuthRequired(t *testing.T) {
	server := setupTestServer(t, obstest.Config{})

	connectSession(t, server, "anything", nil)

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, obsws.RequestGetAuthRequired, requests[0].Type)
}

func TestEndToEnd_ConcurrentRequests(t *testing.T) {
	server := setupTestServer(t, obstest.Config{Password: "secret"})
	session := connectSession(t, server, "secret", nil)

	const numRequests = 100

	g, ctx := errgroup.WithContext(context.Background())

	for i := range numRequests {
		g.Go(func() error {
			msg := fmt.Sprintf("message-%d", i)

			var out struct {
				Message string `json:"message"`
			}

			if err := session.CallTyped(ctx, "Echo", obsws.Args{"message": msg}, &out); err != nil {
				return err
			}

			if out.Message != msg {
				return fmt.Errorf("got %q, want %q", out.Message, msg)
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.EqualValues(t, numRequests+2, session.Stats().RequestsSent)
	assert.Zero(t, session.Stats().Pending)
}

func TestEndToEnd_EventsInterleavedWithResponses(t *testing.T) {
	server := setupTestServer(t, obstest.Config{})
	rec := newEventRecorder()
	session := connectSession(t, server, "", rec)

	result := goCall(context.Background(), session, "Slow", nil)

	require.NoError(t, server.Push("SwitchScenes", map[string]any{"scene-name": "Game"}))
	require.NoError(t, server.Push("SourceMuteStateChanged", map[string]any{"sourceName": "Mic", "muted": true}))

	events := rec.waitN(t, 2)
	assert.Equal(t, "SwitchScenes", events[0].Type)
	assert.Equal(t, "SourceMuteStateChanged", events[1].Type)

	res := waitResult(t, result)
	require.NoError(t, res.err)
	assert.True(t, res.resp.Field("done").Bool())
}

func TestEndToEnd_UnknownRequestType(t *testing.T) {
	server := setupTestServer(t, obstest.Config{})
	session := connectSession(t, server, "", nil)

	_, err := session.Call(context.Background(), "DoesNotExist", nil)

	assert.ErrorIs(t, err, obsws.ErrRequestFailed)
	assert.Contains(t, err.Error(), "invalid request type")
}

func TestEndToEnd_MalformedFrameFromServer(t *testing.T) {
	server := setupTestServer(t, obstest.Config{})
	rec := newEventRecorder()
	session := connectSession(t, server, "", rec)

	require.NoError(t, server.SendRaw([]byte(`{"update-type":`)))
	require.NoError(t, server.Push("ScenesChanged", nil))

	rec.waitN(t, 1)
	assert.EqualValues(t, 1, session.Stats().DecodeFailures)

	_, err := session.Call(context.Background(), "Echo", nil)
	assert.NoError(t, err)
}

func TestEndToEnd_ServerShutdownEndsSession(t *testing.T) {
	server := setupTestServer(t, obstest.Config{})
	session := connectSession(t, server, "", nil)

	server.Close()

	select {
	case <-session.Done():
	case <-time.After(waitTimeout):
		t.Fatal("session not done after server shutdown")
	}

	assert.True(t, session.IsClosed())
	assert.Error(t, session.Err())

	_, err := session.Call(context.Background(), "Echo", nil)
	assert.ErrorIs(t, err, obsws.ErrConnectionClosed)
}

func TestEndToEnd_DialFailure(t *testing.T) {
	session := obsws.NewSession(obsws.DefaultSessionConfig("http://localhost:4444"))

	err := session.Connect(context.Background(), "")
	assert.ErrorIs(t, err, obsws.ErrInvalidURL)
}
