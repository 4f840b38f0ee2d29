// Package viz draws simulation frames for terminals and files.
//
//   - [Canvas]: braille sub-pixel canvas, 2x4 dots per character
//   - [Render]: mesh lines, attractor nodes, particles and partition
//     boundaries of a [sim.Frame] onto a canvas
//   - [Chart]: PNG or SVG line chart of metric series (go-chart)
//   - [SVG] and [TraceSVG]: vector snapshot of a canvas or a trajectory
//   - [Recorder]: animated GIF of captured canvases
//   - [Styles] and [Theme]: lipgloss styling for the live front-end
package viz
