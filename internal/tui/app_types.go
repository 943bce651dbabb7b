package tui

import (
	"context"

	"brainboard/internal/api"
	"brainboard/internal/journal"
	"brainboard/internal/model"
)

// Backend is the subset of the remote client the board needs.
type Backend interface {
	RequestSuggestions(ctx context.Context, sessionID int, sc model.SessionContext, existing []string) ([]string, error)
	CreateCard(ctx context.Context, in api.CreateCardRequest) (model.Card, error)
	UpdateCardPosition(ctx context.Context, cardID int, x, y float64) (bool, error)
	UpdateCard(ctx context.Context, in api.UpdateCardRequest) (model.Card, error)
	DeleteCard(ctx context.Context, cardID int) error
	Export(ctx context.Context, sessionID int) (model.Snapshot, error)
}

// Journal receives failed position writes and opened boards. Nil disables it.
type Journal interface {
	RecordFailure(ctx context.Context, f journal.Failure) (journal.Failure, error)
	Touch(ctx context.Context, b journal.RecentBoard) error
}

type modalKind int

const (
	modalNone modalKind = iota
	modalLoading
	modalError
	modalSuggestions
	modalAddCard
	modalColor
	modalHelp
)

func (k modalKind) String() string {
	switch k {
	case modalLoading:
		return "loading"
	case modalError:
		return "error"
	case modalSuggestions:
		return "suggestions"
	case modalAddCard:
		return "add-card"
	case modalColor:
		return "color"
	case modalHelp:
		return "help"
	default:
		return "none"
	}
}

type severity int

const (
	sevSuccess severity = iota
	sevError
	sevInfo
	sevWarning
)

// retryKind names what the Retry button of an error modal re-runs.
type retryKind int

const (
	retryNone retryKind = iota
	retrySuggestions
	retryLoad
)

// cardOrigin tells a card mutation result where it came from so failures restore the right
// modal.
type cardOrigin int

const (
	originManual cardOrigin = iota
	originSuggestion
	originDuplicate
	originEdit
	originRecolor
)

// Timer messages carry the sequence number of the thing they expire; stale ones are ignored.
type (
	toastExpireMsg   struct{ seq int }
	toastRemoveMsg   struct{ seq int }
	modalFadeDoneMsg struct{ seq int }
)

type boardLoadedMsg struct {
	snap model.Snapshot
	err  error
}

type suggestionsMsg struct {
	suggestions []string
	err         error
}

type cardCreatedMsg struct {
	origin cardOrigin
	card   model.Card
	err    error
}

type cardUpdatedMsg struct {
	origin cardOrigin
	cardID int
	text   *string
	color  *string
	err    error
}

type cardDeletedMsg struct {
	cardID int
	err    error
}

// positionSavedMsg reports a finished position write. Failures were already logged and
// journaled by the command; the UI shows nothing.
type positionSavedMsg struct {
	cardID int
	ok     bool
}
