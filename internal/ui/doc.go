// Package ui hosts the navigation harness in a Bubble Tea terminal UI.
//
// Core abstractions:
//   - View: A screen region with its own model, update, view (Elm-style)
//   - LinksView: The selectable link bar; enter or a digit selects a link
//   - NavigationsView: Recent navigations with their cleanup counts
//   - Overlay: Modal views with a dismiss key
//   - KeybindRegistry / KeyHandler: SPC-leader key sequences
//
// Navigation happens synchronously inside Update, so the Bubble Tea event
// loop is the single thread that mounts and unmounts components.
package ui
