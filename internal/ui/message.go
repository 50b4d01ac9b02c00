package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgInfoFetched MsgKind = iota
	MsgCacheCleared
	MsgProgressUpdate
	MsgEnrichComplete
	MsgBrowserOpened
)

type infoPayload struct {
	name string
	info models.ArtistInfo
}

type enrichPayload struct {
	result *tasks.EnrichResult
	err    error
}

// infoFetchedMsg is the constructor for [MsgInfoFetched]
func infoFetchedMsg(name string, info models.ArtistInfo) Msg {
	return Msg{kind: MsgInfoFetched, data: infoPayload{name, info}}
}

// cacheClearedMsg is the constructor for [MsgCacheCleared]
func cacheClearedMsg(err error) Msg {
	return Msg{kind: MsgCacheCleared, data: err}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// enrichCompleteMsg is the constructor for [MsgEnrichComplete]
func enrichCompleteMsg(result *tasks.EnrichResult, err error) Msg {
	return Msg{kind: MsgEnrichComplete, data: enrichPayload{result, err}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: err}
}
