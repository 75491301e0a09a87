package game

import (
	"math/rand"

	"github.com/mmarfinetz/3dTetris/internal/stability"
)

// PieceSpec describes one entry in the piece catalogue: the box shape
// and mass a spawn produces.
type PieceSpec struct {
	Name        string
	HalfExtents stability.Vec3
	Mass        float64
}

// Catalogue is the default piece set. Footprints vary so stacks have to
// trade area for height; masses follow volume.
func Catalogue() []PieceSpec {
	return []PieceSpec{
		{Name: "cube", HalfExtents: stability.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Mass: 1.0},
		{Name: "slab", HalfExtents: stability.Vec3{X: 1.0, Y: 0.25, Z: 1.0}, Mass: 1.0},
		{Name: "column", HalfExtents: stability.Vec3{X: 0.35, Y: 1.0, Z: 0.35}, Mass: 1.0},
		{Name: "plank", HalfExtents: stability.Vec3{X: 1.2, Y: 0.3, Z: 0.4}, Mass: 1.15},
		{Name: "brick", HalfExtents: stability.Vec3{X: 0.75, Y: 0.4, Z: 0.5}, Mass: 1.2},
	}
}

// pickPiece draws a piece uniformly from the catalogue.
func pickPiece(rng *rand.Rand, catalogue []PieceSpec) PieceSpec {
	return catalogue[rng.Intn(len(catalogue))]
}
