package obs

import "github.com/LLIEPJIOK/obs-remote/pkg/obsws"

const (
	RequestGetAuthRequired = obsws.RequestGetAuthRequired
	RequestAuthenticate    = obsws.RequestAuthenticate
	RequestGetSceneList    = "GetSceneList"
	RequestGetCurrentScene = "GetCurrentScene"
	RequestSetCurrentScene = "SetCurrentScene"
)

type Scene struct {
	Name    string   `json:"name"`
	Sources []Source `json:"sources"`
}

type SceneListResponse struct {
	CurrentScene string  `json:"current-scene"`
	Scenes       []Scene `json:"scenes"`
}

type CurrentSceneResponse = Scene

func SetCurrentSceneArgs(name string) obsws.Args {
	return obsws.Args{"scene-name": name}
}
