package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wallview/internal/lazyload"
	"github.com/desertthunder/wallview/internal/models"
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
	MsgCategoriesFetched MsgKind = iota
	MsgThumbsLoaded
	MsgTick
	MsgCopied
)

type categoriesResult struct {
	categories []models.Category
	err        error
}

type thumbsResult struct {
	page    int
	results []lazyload.Result
	err     error
}

type copyResult struct {
	url string
	err error
}

// categoriesFetchedMsg is the constructor for [MsgCategoriesFetched]
func categoriesFetchedMsg(categories []models.Category, err error) Msg {
	return Msg{kind: MsgCategoriesFetched, data: categoriesResult{categories, err}}
}

// thumbsLoadedMsg is the constructor for [MsgThumbsLoaded]. page tags the results
// so thumbnails for a page that has since been replaced are dropped.
func thumbsLoadedMsg(page int, results []lazyload.Result, err error) Msg {
	return Msg{kind: MsgThumbsLoaded, data: thumbsResult{page, results, err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}

// copiedMsg is the constructor for [MsgCopied]
func copiedMsg(url string, err error) Msg {
	return Msg{kind: MsgCopied, data: copyResult{url, err}}
}
