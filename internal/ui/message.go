package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages understood by the spinner model.
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStatus MsgKind = iota
	MsgStop
)

// statusMsg is the constructor for [MsgStatus]
func statusMsg(text string) Msg {
	return Msg{kind: MsgStatus, data: text}
}

// stopMsg is the constructor for [MsgStop]
func stopMsg() Msg {
	return Msg{kind: MsgStop}
}
