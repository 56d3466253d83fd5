// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable pieces of the folio chat widget.

# Components

MessageBubble (message.go) - One transcript entry: sender label, timestamp,
markdown-lite body and skill chips.

HighlightCode (code.go) - chroma highlighting for fenced code in bot
replies. Falls back to the raw code when colors are off.

ToastManager (toast.go) - Auto-expiring, non-blocking notifications. Toasts
are keyed by creation timestamp, newest first, at most five at a time.

# Theme Integration

All components accept a *styles.Theme:

	theme := styles.NewTheme(styles.Dark)
	bubble := components.NewMessageBubble(msg, theme)
	bubble.SetWidth(60)
	view := bubble.View()

# Toasts

ToastManager satisfies the engine's notifier interface, so copy results
surface as toasts:

	toasts := components.NewToastManager()
	toasts.NotifySuccess("Chat copied to clipboard")
	view := components.RenderToastStack(toasts.TickToasts(), width, theme)
*/
package components
