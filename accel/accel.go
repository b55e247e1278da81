// Package accel defines the interface to the ray intersection engine that
// owns the acceleration structures for the compiled scene geometry.
package accel

import (
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// Option names understood by intersectors.
const (
	OptionAccelType   = "acc.type"
	OptionBuilder     = "bvh.builder"
	OptionSAHBins     = "bvh.sah.num_bins"
	OptionForce2Level = "bvh.force2level"
)

// Shape is an intersector-side handle to a mesh or instance.
type Shape interface {
	// Set the object-to-world transform and its inverse.
	SetTransform(m, inv types.Mat4)

	// Set the id reported back by intersection queries.
	SetID(id int)

	// Set the ray visibility mask.
	SetMask(mask uint32)
}

// Intersector is implemented by acceleration structure engines.
//
// Shapes are created detached; only attached shapes take part in
// intersection queries after the next Commit.
type Intersector interface {
	CreateMesh(vertices []types.Vec3, indices []uint32, numFaces int) (Shape, error)
	CreateInstance(base Shape) (Shape, error)

	AttachShape(s Shape)
	DetachShape(s Shape)
	DeleteShape(s Shape)
	DetachAll()

	// Rebuild acceleration structures for the attached shapes.
	Commit() error

	// Set a builder option. Values are either strings or float32.
	SetOption(name string, value interface{}) error
}
