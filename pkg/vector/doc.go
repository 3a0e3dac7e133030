// Package vector rasterizes SVG markup at an exact pixel size.
//
// Two backends implement [Rasterizer]:
//
//   - [OKSVG]: pure Go, based on github.com/srwiley/oksvg. Always available.
//   - [RSVG]: shells out to rsvg-convert from librsvg. Handles more of the
//     SVG feature set (text, filters) at the cost of an external tool.
//
// Both stretch the drawing to the requested width and height. Failures are
// reported as *[RasterizationError] carrying the backend's diagnostic.
package vector
