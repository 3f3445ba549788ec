package tui

// ViewKind selects the base view under any popup.
type ViewKind int

const (
	ViewFeedList ViewKind = iota
	ViewEntry
)

// ViewState is the current base view. Feed and Entry address the entry
// shown by ViewEntry and are unused for ViewFeedList.
type ViewState struct {
	Kind  ViewKind
	Feed  int
	Entry int
}

func feedListView() ViewState { return ViewState{Kind: ViewFeedList} }

func entryView(feed, entry int) ViewState {
	return ViewState{Kind: ViewEntry, Feed: feed, Entry: entry}
}

func (v ViewKind) String() string {
	switch v {
	case ViewFeedList:
		return "feed list"
	case ViewEntry:
		return "entry"
	default:
		return "unknown"
	}
}

// Popup is the modal layer drawn over the view. While one is active it
// receives every key.
type Popup int

const (
	PopupNone Popup = iota
	PopupAddFeed
	PopupConfirmDelete
	PopupError
	PopupEntryHelp
	PopupFeedListHelp
	PopupSync
)

func (p Popup) String() string {
	switch p {
	case PopupNone:
		return "none"
	case PopupAddFeed:
		return "add feed"
	case PopupConfirmDelete:
		return "confirm delete"
	case PopupError:
		return "error"
	case PopupEntryHelp:
		return "entry help"
	case PopupFeedListHelp:
		return "feed list help"
	case PopupSync:
		return "sync"
	default:
		return "unknown"
	}
}
