// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget provides the terminal chat widget shell.
//
// The widget is a thin Bubble Tea controller around an engine.Engine. It
// owns visibility (closed launcher or open panel), the first-interaction
// flag and the settings menu; everything it shows is read from an engine
// snapshot.
//
// # Wiring
//
// The engine reports changes through ChangeFeed.Notify, which never
// blocks. The widget listens on the feed with a command, so engine events
// arrive as EngineChangedMsg on the program's own goroutine:
//
//	feed := widget.NewChangeFeed()
//	eng := engine.New(engine.Options{Completer: client, OnChange: feed.Notify})
//	m := widget.New(widget.Options{Engine: eng, Feed: feed, Store: st})
//	tea.NewProgram(m).Run()
//
// # Persisted State
//
// store.KeyInteracted is read once in New and written the first time the
// widget opens. store.KeyTheme is written when the theme is toggled from
// the settings menu.
package widget
