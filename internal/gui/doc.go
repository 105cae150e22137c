// Package gui is the desktop image viewer, an ebiten game wrapping the
// viewer controller over one gallery category.
//
// Images are decoded on a background goroutine and uploaded to the GPU on
// the next draw. The window closes when the viewer does.
//
// Keys:
//
//	Esc           close
//	Left, Right   previous, next image
//	+, -          zoom about the image center
//	O             open the image in the browser
//	I             image details
//	Delete        delete the image
//	D, X          toggle, clear the debug overlay
//	F11           fullscreen
//	Q             quit
package gui
