// Package style holds the static mapping tables that drive a conversion:
// which paragraph styles open which section level, which run properties map
// to which ConTeXt wrapper, and which optional categories (images, colors,
// fonts, notes) a single conversion run has enabled.
//
// The tables in this package are never mutated after initialisation. Per-run
// choices live in an Options value, and a Policy is copied rather than edited
// when it is extended, so both can be shared between concurrent conversions.
package style
