package dashboard

import "github.com/MrSnakeDoc/smartmark/internal/domain"

// Command types accepted by Send.
const (
	CmdAdd        = "add"
	CmdDelete     = "delete"
	CmdSearch     = "search"
	CmdAISearch   = "ai_search"
	CmdAIClear    = "ai_clear"
	CmdFetchTitle = "fetch_title"
	CmdRefresh    = "refresh"
)

// Command is one user action on the dashboard.
type Command struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	ID    string `json:"id,omitempty"`
	Query string `json:"query,omitempty"`
}

// Message types emitted on Updates.
const (
	MsgState = "state"
	MsgToast = "toast"
	MsgTitle = "title"
	MsgAdded = "added"
	MsgError = "error"
)

// Display modes.
const (
	ModeAll    = "all"
	ModeSearch = "search"
	ModeAI     = "ai"
)

// Message is one update for the client.
type Message struct {
	Type     string           `json:"type"`
	State    *State           `json:"state,omitempty"`
	Toast    *Toast           `json:"toast,omitempty"`
	Title    *TitleResult     `json:"title,omitempty"`
	Bookmark *domain.Bookmark `json:"bookmark,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Toast levels.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

type Toast struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type TitleResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// State is a full snapshot of what the dashboard shows.
type State struct {
	Bookmarks     []domain.Bookmark `json:"bookmarks"`
	Total         int               `json:"total"`
	Mode          string            `json:"mode"`
	Query         string            `json:"query"`
	AIQuery       string            `json:"ai_query"`
	Adding        bool              `json:"adding"`
	Searching     bool              `json:"searching"`
	FetchingTitle bool              `json:"fetching_title"`
	Stats         domain.Stats      `json:"stats"`
}
