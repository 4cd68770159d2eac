/*
Package occt provides the geometric adaptors consumed by the extrema and
edge/face intersection packages: parametric curves and surfaces, precision
constants and a void-aware axis aligned bounding box.

Curves and surfaces are exposed through the Curve and Surface interfaces so
that the point extrema evaluators in extrema/pc and extrema/ps and the
intersection code in intools can dispatch on the concrete type when an
analytic shortcut exists and fall back to generic sampling otherwise.
*/
package occt
