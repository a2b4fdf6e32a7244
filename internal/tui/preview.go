package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/romilly/claude-code-log-tools/internal/index"
	"github.com/romilly/claude-code-log-tools/internal/render"
	"github.com/romilly/claude-code-log-tools/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	sessionUUID string
	blockID     int64
	content     string
	hitLine     int
	err         error
}

// loadPreviewCmd returns a tea.Cmd that renders the conversation preview async.
func loadPreviewCmd(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderConversation(db, r.SessionUUID, render.Options{
			HitBlockID: r.BlockID,
			Context:    -1,
			Width:      width,
			Query:      query,
		})
		return previewRenderedMsg{
			sessionUUID: r.SessionUUID,
			blockID:     r.BlockID,
			content:     content,
			hitLine:     hitLine,
			err:         err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
