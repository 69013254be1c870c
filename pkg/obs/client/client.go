package client

import (
	"context"
	"fmt"

	"github.com/LLIEPJIOK/obs-remote/pkg/obs"
	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
)

// Client is a session with typed helpers for the scene requests.
type Client struct {
	*obsws.Session
}

// New creates a client. When handle is not nil, events are decoded with obs.DecodeEvent
// and passed to it; an EventSink already set in cfg takes precedence.
func New(cfg obsws.SessionConfig, handle func(event any)) *Client {
	if cfg.EventSink == nil && handle != nil {
		cfg.EventSink = obs.NewEventHandler(handle, cfg.Logger)
	}

	return &Client{
		Session: obsws.NewSession(cfg),
	}
}

func (c *Client) GetSceneList(ctx context.Context) (*obs.SceneListResponse, error) {
	var resp obs.SceneListResponse

	if err := c.CallTyped(ctx, obs.RequestGetSceneList, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get scene list: %w", err)
	}

	return &resp, nil
}

func (c *Client) GetCurrentScene(ctx context.Context) (*obs.CurrentSceneResponse, error) {
	var resp obs.CurrentSceneResponse

	if err := c.CallTyped(ctx, obs.RequestGetCurrentScene, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get current scene: %w", err)
	}

	return &resp, nil
}

func (c *Client) SetCurrentScene(ctx context.Context, name string) error {
	if _, err := c.Call(ctx, obs.RequestSetCurrentScene, obs.SetCurrentSceneArgs(name)); err != nil {
		return fmt.Errorf("failed to switch to scene %q: %w", name, err)
	}

	return nil
}
