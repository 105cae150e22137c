// Package viewer implements the gesture and transform state machine behind the lightbox image viewer.
//
// A [Controller] is bound to one viewer overlay. It receives device-neutral
// events from [input] and turns them into one of three outcomes:
//
//   - a local [Transform] (zoom about the cursor, drag to pan, swipe tracking)
//     pushed to a [Surface] at frame boundaries
//   - a call into the owning gallery through optional capabilities
//     ([Navigator], [Closer], [Detailer], [Deleter], [ImageSource])
//   - opening the current image in a new browsing context through an [Opener]
//
// Timed behavior (swipe transitions, double-tap detection, auto-hiding
// controls) runs on a [Scheduler] that the front end advances from its frame
// loop, so every delayed step can be cancelled and tests can drive a fake clock.
//
// Controllers are not safe for concurrent use; all methods must be called from the UI loop.
package viewer
