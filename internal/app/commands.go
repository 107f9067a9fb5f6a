package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// submitter is the slice of the orchestrator the model needs; tests swap in
// a fake.
type submitter interface {
	Submit(topic string) error
}

func submitCmd(orch submitter, topic string) tea.Cmd {
	return func() tea.Msg {
		return submitResultMsg{topic: topic, err: orch.Submit(topic)}
	}
}
