package models

// AudioButton is the rendered state of a question's play/pause controls.
type AudioButton struct {
	Label        string `json:"label"`
	Icon         string `json:"icon"`
	Disabled     bool   `json:"disabled"`
	PlayVisible  bool   `json:"play_visible"`
	PauseVisible bool   `json:"pause_visible"`
	Playing      bool   `json:"playing"`
}

var (
	AudioButtonLoading = AudioButton{Label: "Loading...", Icon: "spinner", Disabled: true, PlayVisible: true}
	AudioButtonReady   = AudioButton{Label: "Play Audio", Icon: "play", PlayVisible: true}
	AudioButtonPlaying = AudioButton{Label: "Play Audio", Icon: "play", PauseVisible: true, Playing: true}
)

// Sample track button labels on the home page.
const (
	SampleLabelPlay = "Play Sample Audio"
	SampleLabelStop = "Stop Audio"
)

// SampleAudioQuestion is the registry key of the home page sample track.
const SampleAudioQuestion = 0
