package app

import "github.com/rakesh-kumar-k/jokegen/internal/chat"

type snapshotMsg struct {
	snapshot chat.Snapshot
}

type submitResultMsg struct {
	topic string
	err   error
}
