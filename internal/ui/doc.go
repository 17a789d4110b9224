// Package ui renders terminal feedback for long-running commands.
//
// [Spinner] runs a small bubbletea program that animates a bubbles spinner next to
// the latest status line. Status changes arrive as [Msg] values sent to the program,
// so callers on other goroutines never touch the model directly.
//
// The spinner only makes sense on an interactive terminal; [IsTerminal] reports
// whether a file descriptor is one.
package ui
