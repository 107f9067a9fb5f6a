package app

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/rakesh-kumar-k/jokegen/internal/chat"
	"github.com/rakesh-kumar-k/jokegen/internal/types"
)

// renderTranscript produces the viewport body for the current snapshot.
func renderTranscript(snapshot chat.Snapshot, width int) string {
	if width <= 0 {
		width = 80
	}
	if len(snapshot.Messages) == 0 {
		return statusStyle.Render("Type a topic and press enter to request a joke.")
	}

	var blocks []string
	for _, message := range snapshot.Messages {
		switch message.Role {
		case types.RoleUser:
			blocks = append(blocks, userStyle.Render("you")+" "+message.Content)
		case types.RoleAssistant:
			blocks = append(blocks, renderMarkdown(message.Content, width))
		}
	}
	if snapshot.Phase == types.TurnFailed && snapshot.Failure != "" {
		blocks = append(blocks, errorStyle.Render("turn failed: "+snapshot.Failure))
	}
	return strings.Join(blocks, "\n\n")
}

// statusLine renders the activity line below the transcript.
func statusLine(snapshot chat.Snapshot, spinnerView string, width int) string {
	var parts []string
	switch snapshot.Connection {
	case types.ConnectionConnected:
		parts = append(parts, connUpStyle.Render("● connected"))
	case types.ConnectionConnecting:
		parts = append(parts, connDownStyle.Render("◌ connecting"))
	case types.ConnectionDisconnected:
		parts = append(parts, connDownStyle.Render("○ disconnected"))
	case types.ConnectionErroring:
		parts = append(parts, errorStyle.Render("○ connection error"))
	}

	switch snapshot.Phase {
	case types.TurnConnecting:
		parts = append(parts, spinnerView+statusStyle.Render(" submitting topic"))
	case types.TurnStreaming:
		if snapshot.Agent != nil {
			note := truncate(snapshot.Agent.Note, width-8)
			parts = append(parts, spinnerView+agentNameStyle.Render(snapshot.Agent.Agent)+statusStyle.Render(": "+note))
		} else {
			parts = append(parts, spinnerView+statusStyle.Render(" waiting for agents"))
		}
	case types.TurnFailed:
		parts = append(parts, errorStyle.Render(truncate(snapshot.Failure, width-4)))
	}
	if len(parts) == 0 {
		return statusStyle.Render("ready")
	}
	return strings.Join(parts, "  ")
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	return runewidth.Truncate(value, width, "…")
}
