// Package normalize assembles one canonical bitmap from heterogeneous
// graphic sources.
//
// A source is raster bytes ([RasterSource]), SVG markup ([VectorSource]) or
// one page of a document ([DocumentSource]). [Normalizer.Merge] brings every
// source to the same target size and paints them in order, painter's
// algorithm style: the first source is the background and every later
// source is drawn over the accumulated image. Opaque pixels of a later
// source replace what is underneath; transparent pixels leave it visible.
//
// Vector sources are rasterized directly at the target size. Raster sources
// and rendered document pages are rescaled with a smoothing interpolator
// (bilinear by default), so a composite built at any size can be compared
// with the signature engine.
//
//	n := normalize.New()
//	img, err := n.MergeFiles(ctx, []string{"basemap.png", "overlay.svg"}, 800, 600)
package normalize
