package session

import (
	"golang.org/x/text/language"

	"videoprompt/internal/domain"
)

// Kind enumerates the session states.
type Kind string

const (
	KindIdle       Kind = "idle"
	KindValidating Kind = "validating"
	KindReady      Kind = "ready"
	KindGenerating Kind = "generating"
	KindSuccess    Kind = "success"
	KindError      Kind = "error"
)

// State is one of Idle, Validating, Ready, Generating, Success or Failed.
// Each variant carries only the data that is meaningful in that state.
type State interface {
	Kind() Kind
	sealed()
}

type Idle struct{}

type Validating struct {
	Filename string
}

type Ready struct {
	Video  domain.UploadedVideo
	Source domain.PlayableSource
}

type Generating struct {
	Video  domain.UploadedVideo
	Source domain.PlayableSource
}

// Success keeps the sampled frames that produced Prompt.
type Success struct {
	Video  domain.UploadedVideo
	Source domain.PlayableSource
	Frames domain.FrameSet
	Prompt domain.GeneratedPrompt
}

// Failed holds the error of the last step. After a failed generation the
// accepted video stays held so its source can be released on the next
// selection.
type Failed struct {
	Err    error
	Video  *domain.UploadedVideo
	Source *domain.PlayableSource
}

func (Idle) Kind() Kind       { return KindIdle }
func (Validating) Kind() Kind { return KindValidating }
func (Ready) Kind() Kind      { return KindReady }
func (Generating) Kind() Kind { return KindGenerating }
func (Success) Kind() Kind    { return KindSuccess }
func (Failed) Kind() Kind     { return KindError }

func (Idle) sealed()       {}
func (Validating) sealed() {}
func (Ready) sealed()      {}
func (Generating) sealed() {}
func (Success) sealed()    {}
func (Failed) sealed()     {}

// held returns the accepted video and playable source owned by st, if any.
func held(st State) (domain.UploadedVideo, domain.PlayableSource, bool) {
	switch s := st.(type) {
	case Ready:
		return s.Video, s.Source, true
	case Generating:
		return s.Video, s.Source, true
	case Success:
		return s.Video, s.Source, true
	case Failed:
		if s.Video != nil && s.Source != nil {
			return *s.Video, *s.Source, true
		}
	}
	return domain.UploadedVideo{}, domain.PlayableSource{}, false
}

// View is the display representation of a state.
type View struct {
	State       Kind                  `json:"state"`
	StatusText  string                `json:"status_text"`
	Message     string                `json:"message,omitempty"`
	Video       *domain.UploadedVideo `json:"video,omitempty"`
	Prompt      string                `json:"prompt,omitempty"`
	FrameCount  int                   `json:"frame_count,omitempty"`
	CanGenerate bool                  `json:"can_generate"`
}

// Describe renders st for the display layer in the given language.
func Describe(st State, tag language.Tag) View {
	view := View{State: st.Kind()}
	switch s := st.(type) {
	case Idle:
		view.StatusText = domain.Localize(tag, domain.MsgStatusIdle)
	case Validating:
		view.StatusText = domain.Localize(tag, domain.MsgStatusValidating)
	case Ready:
		view.StatusText = domain.Localize(tag, domain.MsgStatusReady)
		view.Video = &s.Video
		view.CanGenerate = true
	case Generating:
		view.StatusText = domain.Localize(tag, domain.MsgStatusGenerating)
		view.Video = &s.Video
	case Success:
		view.StatusText = domain.Localize(tag, domain.MsgStatusSuccess)
		view.Video = &s.Video
		view.Prompt = string(s.Prompt)
		view.FrameCount = len(s.Frames)
		view.CanGenerate = true
	case Failed:
		view.StatusText = domain.Localize(tag, domain.MsgStatusError)
		view.Message = domain.Message(s.Err, tag)
	}
	return view
}
