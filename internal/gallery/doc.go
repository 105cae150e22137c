// Package gallery holds the page of images the viewer browses.
//
// [Gallery] is the host the viewer controller talks to: it implements the
// navigation, close, details and delete capabilities over one page of a
// category. Pages come from a [Store]:
//   - [SQLStore] : categories and images indexed in SQLite
//   - [DirStore] : a single folder read straight from disk, searched with fuzzy matching
//
// A Gallery is not safe for concurrent use. It is driven from the same loop as
// the controller it is attached to.
package gallery
