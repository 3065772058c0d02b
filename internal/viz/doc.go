// Package viz draws layouts in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Viewport]: fits world coordinates onto a canvas
//   - [LiveModel]: Bubble Tea program that drives a simulation frame by frame
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reheat
//	N     - Add a node linked to a random node
//	X     - Remove the last added node
//	+/-   - Stronger/weaker repulsion
//	[ ]   - Shorter/longer links
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
