package client_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLIEPJIOK/obs-remote/pkg/obs"
	"github.com/LLIEPJIOK/obs-remote/pkg/obs/client"
	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
	"github.com/LLIEPJIOK/obs-remote/pkg/obsws/obstest"
)

func setupScenes(t *testing.T) *obstest.Server {
	t.Helper()

	var mu sync.Mutex
	current := "Intro"
	server := obstest.NewServer(obstest.Config{Password: "secret"})
	t.Cleanup(server.Close)

	server.Handle(obs.RequestGetSceneList, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		mu.Lock()
		defer mu.Unlock()

		return map[string]any{
			"current-scene": current,
			"scenes": []map[string]any{
				{"name": "Intro", "sources": []map[string]any{{"name": "Logo", "type": "image_source", "render": true}}},
				{"name": "Game", "sources": []map[string]any{}},
			},
		}, nil
	})

	server.Handle(obs.RequestGetCurrentScene, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		mu.Lock()
		defer mu.Unlock()

		return map[string]any{"name": current, "sources": []map[string]any{}}, nil
	})

	server.Handle(obs.RequestSetCurrentScene, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		name, _ := args["scene-name"].(string)
		if name != "Intro" && name != "Game" {
			return nil, assert.AnError
		}

		mu.Lock()
		current = name
		mu.Unlock()

		return nil, server.Push(obs.EventSwitchScenes, map[string]any{"scene-name": name})
	})

	return server
}

func TestClient_Scenes(t *testing.T) {
	server := setupScenes(t)

	events := make(chan any, 1)
	c := client.New(obsws.DefaultSessionConfig(server.URL()), func(event any) {
		events <- event
	})

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx, "secret"))
	defer c.Close()

	list, err := c.GetSceneList(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Intro", list.CurrentScene)
	require.Len(t, list.Scenes, 2)
	assert.Equal(t, "Logo", list.Scenes[0].Sources[0].Name)
	assert.True(t, list.Scenes[0].Sources[0].Render)

	require.NoError(t, c.SetCurrentScene(ctx, "Game"))

	select {
	case ev := <-events:
		assert.Equal(t, &obs.SwitchScenes{SceneName: "Game"}, ev)
	case <-time.After(time.Second):
		t.Fatal("SwitchScenes event not received")
	}

	list, err = c.GetSceneList(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Game", list.CurrentScene)

	scene, err := c.GetCurrentScene(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Game", scene.Name)
}

func TestClient_SetUnknownScene(t *testing.T) {
	server := setupScenes(t)

	c := client.New(obsws.DefaultSessionConfig(server.URL()), nil)
	require.NoError(t, c.Connect(context.Background(), "secret"))
	defer c.Close()

	err := c.SetCurrentScene(context.Background(), "Missing")

	assert.ErrorIs(t, err, obsws.ErrRequestFailed)
	assert.Contains(t, err.Error(), "Missing")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OBS_URL", "ws://studio:4455")
	t.Setenv("OBS_PASSWORD", "hunter2")
	t.Setenv("OBS_REQUEST_TIMEOUT", "5s")

	cfg, password, err := client.ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "ws://studio:4455", cfg.URL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "hunter2", password)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("OBS_URL", "")
	t.Setenv("OBS_PASSWORD", "")
	t.Setenv("OBS_REQUEST_TIMEOUT", "")

	cfg, password, err := client.ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, client.DefaultURL, cfg.URL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Empty(t, password)
}

func TestConfigFromEnv_BadTimeout(t *testing.T) {
	t.Setenv("OBS_REQUEST_TIMEOUT", "soon")

	_, _, err := client.ConfigFromEnv()
	assert.Error(t, err)
}
