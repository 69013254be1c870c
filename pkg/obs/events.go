package obs

import (
	"errors"
	"fmt"

	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
)

var ErrUnknownEvent = errors.New("unknown event type")

const (
	EventSwitchScenes               = "SwitchScenes"
	EventScenesChanged              = "ScenesChanged"
	EventPreviewSceneChanged        = "PreviewSceneChanged"
	EventSceneItemSelected          = "SceneItemSelected"
	EventSceneItemDeselected        = "SceneItemDeselected"
	EventSceneItemVisibilityChanged = "SceneItemVisibilityChanged"
	EventSceneItemLockChanged       = "SceneItemLockChanged"
	EventTransitionBegin            = "TransitionBegin"
	EventTransitionEnd              = "TransitionEnd"
	EventTransitionVideoEnd         = "TransitionVideoEnd"
	EventSourceVolumeChanged        = "SourceVolumeChanged"
	EventSourceMuteStateChanged     = "SourceMuteStateChanged"
	EventSourceCreated              = "SourceCreated"
	EventSourceDestroyed            = "SourceDestroyed"
	EventSourceFilterRemoved        = "SourceFilterRemoved"
	EventSourceOrderChanged         = "SourceOrderChanged"
)

// Source is a scene item as reported inside scene events and the scene list.
type Source struct {
	Alignment uint32  `json:"alignment"`
	CX        float32 `json:"cx"`
	CY        float32 `json:"cy"`
	ID        uint32  `json:"id"`
	Name      string  `json:"name"`
	Locked    bool    `json:"locked"`
	Muted     bool    `json:"muted"`
	Render    bool    `json:"render"`
	SourceCX  uint32  `json:"source_cx"`
	SourceCY  uint32  `json:"source_cy"`
	Type      string  `json:"type"`
	Volume    float64 `json:"volume"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
}

type SceneItem struct {
	ItemID     uint32 `json:"item-id"`
	SourceName string `json:"source-name"`
}

type SwitchScenes struct {
	SceneName string   `json:"scene-name"`
	Sources   []Source `json:"sources"`
}

type ScenesChanged struct{}

type PreviewSceneChanged struct {
	SceneName string   `json:"scene-name"`
	Sources   []Source `json:"sources"`
}

type SceneItemSelected struct {
	ItemID    uint32 `json:"item-id"`
	ItemName  string `json:"item-name"`
	SceneName string `json:"scene-name"`
}

type SceneItemDeselected struct {
	ItemID    uint32 `json:"item-id"`
	ItemName  string `json:"item-name"`
	SceneName string `json:"scene-name"`
}

type SceneItemVisibilityChanged struct {
	ItemID      uint32 `json:"item-id"`
	ItemName    string `json:"item-name"`
	ItemVisible bool   `json:"item-visible"`
	SceneName   string `json:"scene-name"`
}

type SceneItemLockChanged struct {
	ItemID     uint32 `json:"item-id"`
	ItemName   string `json:"item-name"`
	ItemLocked bool   `json:"item-locked"`
	SceneName  string `json:"scene-name"`
}

type TransitionBegin struct {
	Duration  uint32 `json:"duration"`
	FromScene string `json:"from-scene"`
	ToScene   string `json:"to-scene"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

type TransitionEnd struct {
	Duration uint32 `json:"duration"`
	ToScene  string `json:"to-scene"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

type TransitionVideoEnd struct {
	Duration  uint32 `json:"duration"`
	FromScene string `json:"from-scene"`
	ToScene   string `json:"to-scene"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

// События источников используют camelCase, в отличие от событий сцен.

type SourceVolumeChanged struct {
	SourceName string  `json:"sourceName"`
	Volume     float64 `json:"volume"`
}

type SourceMuteStateChanged struct {
	SourceName string `json:"sourceName"`
	Muted      bool   `json:"muted"`
}

type SourceCreated struct {
	SourceName     string            `json:"sourceName"`
	SourceType     string            `json:"sourceType"`
	SourceSettings map[string]string `json:"sourceSettings"`
}

type SourceDestroyed struct {
	SourceKind string `json:"sourceKind"`
	SourceName string `json:"sourceName"`
	SourceType string `json:"sourceType"`
}

type SourceFilterRemoved struct {
	FilterName string `json:"filterName"`
	FilterType string `json:"filterType"`
	SourceName string `json:"sourceName"`
}

type SourceOrderChanged struct {
	SceneName  string      `json:"scene-name"`
	SceneItems []SceneItem `json:"scene-items"`
}

var eventFactories = map[string]func() any{
	EventSwitchScenes:               func() any { return &SwitchScenes{} },
	EventScenesChanged:              func() any { return &ScenesChanged{} },
	EventPreviewSceneChanged:        func() any { return &PreviewSceneChanged{} },
	EventSceneItemSelected:          func() any { return &SceneItemSelected{} },
	EventSceneItemDeselected:        func() any { return &SceneItemDeselected{} },
	EventSceneItemVisibilityChanged: func() any { return &SceneItemVisibilityChanged{} },
	EventSceneItemLockChanged:       func() any { return &SceneItemLockChanged{} },
	EventTransitionBegin:            func() any { return &TransitionBegin{} },
	EventTransitionEnd:              func() any { return &TransitionEnd{} },
	EventTransitionVideoEnd:         func() any { return &TransitionVideoEnd{} },
	EventSourceVolumeChanged:        func() any { return &SourceVolumeChanged{} },
	EventSourceMuteStateChanged:     func() any { return &SourceMuteStateChanged{} },
	EventSourceCreated:              func() any { return &SourceCreated{} },
	EventSourceDestroyed:            func() any { return &SourceDestroyed{} },
	EventSourceFilterRemoved:        func() any { return &SourceFilterRemoved{} },
	EventSourceOrderChanged:         func() any { return &SourceOrderChanged{} },
}

// DecodeEvent decodes ev into a pointer to its typed event, e.g. *SwitchScenes.
func DecodeEvent(ev obsws.Event) (any, error) {
	factory, ok := eventFactories[ev.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.Type)
	}

	typed := factory()
	if err := ev.Unmarshal(typed); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ev.Type, err)
	}

	return typed, nil
}
