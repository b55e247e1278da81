package compiler

import (
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/accel"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/gpuscene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// Rebuild geometry buffers, shape records and intersector shapes.
func (cc *compileContext) writeShapes() (int, error) {
	snap := cc.state.snapshot
	geometry := cc.part.geometry()

	numVertices, numIndices := 0, 0
	for _, mesh := range geometry {
		numVertices += len(mesh.Vertices())
		numIndices += len(mesh.Indices())
	}
	numRecords := cc.part.numRecords()

	if err := ensureCapacity(cc, &snap.Vertices, "vertices", numVertices, device.MemReadOnly); err != nil {
		return 0, err
	}
	if err := ensureCapacity(cc, &snap.Normals, "normals", numVertices, device.MemReadOnly); err != nil {
		return 0, err
	}
	if err := ensureCapacity(cc, &snap.UVs, "uvs", numVertices, device.MemReadOnly); err != nil {
		return 0, err
	}
	if err := ensureCapacity(cc, &snap.Indices, "indices", numIndices, device.MemReadOnly); err != nil {
		return 0, err
	}
	if err := ensureCapacity(cc, &snap.Shapes, "shapes", numRecords, device.MemReadOnly); err != nil {
		return 0, err
	}

	// Running offsets of each mesh inside the geometry buffers.
	startVtx := make(map[*scene.Mesh]int32, len(geometry))
	startIdx := make(map[*scene.Mesh]int32, len(geometry))
	vtxOffset, idxOffset := 0, 0
	for _, mesh := range geometry {
		startVtx[mesh] = int32(vtxOffset)
		startIdx[mesh] = int32(idxOffset)
		vtxOffset += len(mesh.Vertices())
		idxOffset += len(mesh.Indices())
	}

	err := writeBuffer(cc, snap.Vertices, func(out []types.Vec4) error {
		offset := 0
		for _, mesh := range geometry {
			for _, v := range mesh.Vertices() {
				out[offset] = v.Vec4(1)
				offset++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	err = writeBuffer(cc, snap.Normals, func(out []types.Vec4) error {
		offset := 0
		for _, mesh := range geometry {
			normals := mesh.Normals()
			for i := range mesh.Vertices() {
				if len(normals) != 0 {
					out[offset] = normals[i].Vec4(0)
				} else {
					out[offset] = types.Vec4{}
				}
				offset++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	err = writeBuffer(cc, snap.UVs, func(out []types.Vec2) error {
		offset := 0
		for _, mesh := range geometry {
			uvs := mesh.UVs()
			for i := range mesh.Vertices() {
				if len(uvs) != 0 {
					out[offset] = uvs[i]
				} else {
					out[offset] = types.Vec2{}
				}
				offset++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	err = writeBuffer(cc, snap.Indices, func(out []uint32) error {
		offset := 0
		for _, mesh := range geometry {
			offset += copy(out[offset:], mesh.Indices())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	records := cc.part.records()
	err = writeBuffer(cc, snap.Shapes, func(out []gpuscene.Shape) error {
		for idx, shape := range records {
			mesh := shape.Geometry()
			out[idx] = gpuscene.Shape{
				StartVtx: startVtx[mesh],
				StartIdx: startIdx[mesh],
				NumPrims: int32(mesh.NumFaces()),
			}
			cc.fillShapeProperties(&out[idx], shape)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	snap.NumVertices = numVertices
	snap.NumIndices = numIndices
	snap.NumShapes = numRecords
	snap.NumVisibleShapes = len(cc.part.meshes) + len(cc.part.instances)

	if err = cc.rebuildAccel(records); err != nil {
		return 0, err
	}
	return numRecords, nil
}

// Rewrite the transform, material, volume and mask of existing shape records
// without touching geometry.
func (cc *compileContext) writeShapeProperties() (int, error) {
	snap := cc.state.snapshot
	records := cc.part.records()
	if len(records) != snap.NumShapes || len(records) != len(cc.state.accelShapes) {
		return 0, fmt.Errorf("shape record count mismatch: expected %d; got %d", snap.NumShapes, len(records))
	}

	err := device.WithMapped(cc.devCtx, transferQueue, snap.Shapes, device.MapRead|device.MapWrite, func(out []gpuscene.Shape) error {
		for idx, shape := range records {
			cc.fillShapeProperties(&out[idx], shape)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for idx, shape := range records {
		as := cc.state.accelShapes[idx]
		xform := shape.Transform()
		as.SetTransform(xform, xform.Inv())
		as.SetMask(shape.Mask())
	}
	if err = cc.intersector.Commit(); err != nil {
		return 0, fmt.Errorf("intersector commit failed: %w", err)
	}
	return len(records), nil
}

func (cc *compileContext) fillShapeProperties(rec *gpuscene.Shape, shape scene.Shape) {
	rec.ID = int32(shape.ID())
	rec.MaterialIdx = cc.materialIndex(cc.shapeMaterial(shape))
	rec.VolumeIdx = cc.volumeIndex(cc.shapeVolume(shape))
	rec.Mask = shape.Mask()
	rec.SetTransform(shape.Transform())
	rec.LinearVelocity = types.Vec4{}
	rec.AngularVelocity = types.Vec4{}
}

// Replace all intersector shapes with new ones for the current partition.
// Only meshes and instances attached to the scene are made visible.
func (cc *compileContext) rebuildAccel(records []scene.Shape) error {
	for _, as := range cc.state.accelShapes {
		cc.intersector.DetachShape(as)
		cc.intersector.DeleteShape(as)
	}
	cc.state.accelShapes = nil
	cc.state.partition = nil

	if err := cc.applyAccelOptions(); err != nil {
		return err
	}

	accelShapes := make([]accel.Shape, len(records))
	for idx, shape := range records {
		var (
			as  accel.Shape
			err error
		)
		switch s := shape.(type) {
		case *scene.Mesh:
			as, err = cc.intersector.CreateMesh(s.Vertices(), s.Indices(), s.NumFaces())
		case *scene.Instance:
			as, err = cc.intersector.CreateInstance(accelShapes[cc.part.recordIndex[s.Base()]])
		}
		if err != nil {
			for _, created := range accelShapes[:idx] {
				cc.intersector.DeleteShape(created)
			}
			return fmt.Errorf("could not create intersector shape for record %d: %w", idx, err)
		}

		xform := shape.Transform()
		as.SetTransform(xform, xform.Inv())
		as.SetID(int(shape.ID()))
		as.SetMask(shape.Mask())
		accelShapes[idx] = as
	}

	cc.intersector.DetachAll()
	for _, mesh := range cc.part.meshes {
		cc.intersector.AttachShape(accelShapes[cc.part.recordIndex[mesh]])
	}
	for _, inst := range cc.part.instances {
		cc.intersector.AttachShape(accelShapes[cc.part.recordIndex[inst]])
	}

	cc.state.accelShapes = accelShapes
	cc.state.partition = cc.part
	if err := cc.intersector.Commit(); err != nil {
		return fmt.Errorf("intersector commit failed: %w", err)
	}
	return nil
}
