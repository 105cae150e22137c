// Package stage holds the window-independent parts of the desktop viewer:
// where the image and control bar are drawn, how transforms are eased
// between frames, and how one frame of raw input becomes viewer events.
//
// Mouse input follows the desktop contract. A press and release on the same
// element is a click, Ctrl or Cmd with the wheel zooms about the cursor, and
// dragging a zoomed image pans it. Touches that land on the image feed the
// swipe and tap recognizer; touches on any other element behave as clicks.
package stage
