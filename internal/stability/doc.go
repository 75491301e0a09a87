// Package stability owns the tower stability analysis core.
//
// Responsibilities: support-polygon construction from body contacts,
// mass-weighted centroid tracking with oscillation detection, and the
// combined 0-100 stability score published to the game loop.
// Key types: Body, Info, Analyzer.
//
// The package is a pure consumer of body snapshots: it never mutates
// piece positions, masses, or lifetimes. All degenerate geometry (too
// few contacts, zero mass, empty stack) maps to sentinel scores rather
// than errors.
package stability
