// Package ui implements the terminal gallery using bubbletea's Elm architecture.
//
// The TUI moves between four views:
//  1. [CategoryListView] : Pick a category
//  2. [GalleryView] : Browse one page as a waterfall list or a grid
//  3. [SearchView] : Enter a file name search
//  4. [ViewerView] : Inspect one image with the viewer controller
//
// The (view) [Model] implements the standard Init/Update/View pattern, receiving its own messages via the Msg union type.
// Key presses and mouse events are translated into the input vocabulary and handed to the [viewer.Controller];
// a frame tick advances the controller's scheduler and the terminal [Surface] while the viewer is open.
//
// Thumbnails load lazily: only rows inside the visible window are decoded, and each loaded image is summarized as a
// color swatch. Ctrl-click (or space) selects cards; a click outside cards, the header and pagination clears the selection.
//
// Press D for the debug panel and c to copy the current image URL to the clipboard.
package ui
