package compiler

import (
	"context"
	"fmt"
	"time"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/collector"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/gpuscene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
)

// The shapes of a scene split by the way they are serialized. Shape records
// are written for meshes, then excluded meshes, then instances.
type partition struct {
	meshes    []*scene.Mesh
	excluded  []*scene.Mesh
	instances []*scene.Instance

	// Shape record index of every partitioned shape.
	recordIndex map[scene.Shape]int
}

// Partition the scene shapes in a single pass. Excluded meshes are the bases
// of instances that are not attached to the scene themselves; they are
// serialized in the order of the first instance referencing them.
func partitionShapes(shapes []scene.Shape) (*partition, error) {
	p := &partition{}
	attached := make(map[*scene.Mesh]bool)
	for _, shape := range shapes {
		switch s := shape.(type) {
		case *scene.Mesh:
			p.meshes = append(p.meshes, s)
			attached[s] = true
		case *scene.Instance:
			p.instances = append(p.instances, s)
		}
	}

	seen := make(map[*scene.Mesh]bool)
	for _, inst := range p.instances {
		base, ok := inst.Base().(*scene.Mesh)
		if !ok || base == nil {
			return nil, fmt.Errorf("%w: instance %q", ErrInvalidInstance, inst.Name)
		}
		if attached[base] || seen[base] {
			continue
		}
		seen[base] = true
		p.excluded = append(p.excluded, base)
	}

	p.recordIndex = make(map[scene.Shape]int, p.numRecords())
	for _, shape := range p.records() {
		p.recordIndex[shape] = len(p.recordIndex)
	}
	return p, nil
}

func (p *partition) numRecords() int {
	return len(p.meshes) + len(p.excluded) + len(p.instances)
}

// Get the meshes whose geometry is serialized, in record order.
func (p *partition) geometry() []*scene.Mesh {
	out := make([]*scene.Mesh, 0, len(p.meshes)+len(p.excluded))
	out = append(out, p.meshes...)
	return append(out, p.excluded...)
}

// Get all partitioned shapes in record order.
func (p *partition) records() []scene.Shape {
	out := make([]scene.Shape, 0, p.numRecords())
	for _, m := range p.meshes {
		out = append(out, m)
	}
	for _, m := range p.excluded {
		out = append(out, m)
	}
	for _, inst := range p.instances {
		out = append(out, inst)
	}
	return out
}

// Check whether two partitions serialize the same shapes in the same order.
func (p *partition) equal(other *partition) bool {
	if other == nil || p.numRecords() != other.numRecords() {
		return false
	}
	for shape, idx := range p.recordIndex {
		if otherIdx, ok := other.recordIndex[shape]; !ok || otherIdx != idx {
			return false
		}
	}
	return true
}

// compileContext carries the state of a single compile pass.
type compileContext struct {
	*Controller

	scn   *scene.Scene
	state *sceneState
	id    scene.ControllerID

	materials *collector.Collector[*scene.Material]
	textures  *collector.Collector[*scene.Texture]
	volumes   *collector.Collector[*scene.Volume]
	inputMaps *collector.Collector[*scene.InputMap]
	leaves    *collector.Collector[*scene.InputMap]

	part *partition

	stats gpuscene.CompileStats

	// Buffer reallocations for the category being written.
	reallocs int
}

func (c *Controller) newCompileContext(scn *scene.Scene, state *sceneState) (*compileContext, error) {
	part, err := partitionShapes(scn.Shapes())
	if err != nil {
		return nil, err
	}

	cc := &compileContext{
		Controller: c,
		scn:        scn,
		state:      state,
		id:         c.id,
		materials:  collector.New[*scene.Material](),
		textures:   collector.New[*scene.Texture](),
		volumes:    collector.New[*scene.Volume](),
		inputMaps:  collector.New[*scene.InputMap](),
		leaves:     collector.New[*scene.InputMap](),
		part:       part,
	}
	cc.collect()
	return cc, nil
}

// Populate the collectors with the objects referenced by the scene.
func (cc *compileContext) collect() {
	for _, shape := range cc.part.records() {
		cc.collectMaterial(cc.shapeMaterial(shape))
		cc.volumes.Collect(cc.shapeVolume(shape))
	}
	cc.volumes.Collect(cc.scn.Camera().Volume())

	for _, mat := range cc.materials.All() {
		cc.textures.Collect(mat.Textures()...)
		if mat.Kind() != scene.UberMaterial {
			continue
		}
		for _, root := range mat.ActiveInputMaps(cc.uber.ResolveMode(mat)) {
			if root == nil {
				continue
			}
			cc.inputMaps.Collect(root)
			root.Walk(func(node *scene.InputMap) {
				if node.IsLeaf() {
					cc.leaves.Collect(node)
				}
			})
		}
	}

	for _, leaf := range cc.leaves.All() {
		cc.textures.Collect(leaf.Texture())
	}
	for _, vol := range cc.volumes.All() {
		cc.textures.Collect(vol.AbsorptionTexture())
	}
	for _, l := range cc.scn.Lights() {
		cc.textures.Collect(l.Textures()...)
	}
	cc.textures.Collect(cc.scn.Background())
}

func (cc *compileContext) collectMaterial(m *scene.Material) {
	if cc.materials.Contains(m) {
		return
	}
	cc.materials.Collect(m)
	for _, child := range m.Children() {
		cc.collectMaterial(child)
	}
}

// Get the material of a shape. Instances without a material use the
// material of their base.
func (cc *compileContext) shapeMaterial(shape scene.Shape) *scene.Material {
	if m := shape.Material(); m != nil {
		return m
	}
	if inst, ok := shape.(*scene.Instance); ok && inst.Base().Material() != nil {
		return inst.Base().Material()
	}
	return cc.defaultMaterial
}

// Get the volume of a shape. Instances without a volume use the volume of
// their base.
func (cc *compileContext) shapeVolume(shape scene.Shape) *scene.Volume {
	if v := shape.Volume(); v != nil {
		return v
	}
	if inst, ok := shape.(*scene.Instance); ok {
		return inst.Base().Volume()
	}
	return nil
}

func (cc *compileContext) textureIndex(tex *scene.Texture) int32 {
	if tex == nil {
		return -1
	}
	if idx, ok := cc.textures.Index(tex); ok {
		return int32(idx)
	}
	return -1
}

func (cc *compileContext) volumeIndex(vol *scene.Volume) int32 {
	if vol == nil {
		return -1
	}
	if idx, ok := cc.volumes.Index(vol); ok {
		return int32(idx)
	}
	return -1
}

// Every shape material is collected so a failed lookup is a programming error.
func (cc *compileContext) materialIndex(m *scene.Material) int32 {
	if m == nil {
		return -1
	}
	idx, ok := cc.materials.Index(m)
	if !ok {
		panic(fmt.Sprintf("compiler: material %q was not collected", m.Name))
	}
	return int32(idx)
}

// Work out which categories need to be written.
func (cc *compileContext) detectChanges() category {
	if !cc.state.compiled {
		return catAll
	}

	var changed category
	flags := cc.scn.DirtyFlags(cc.id)
	if flags&scene.DirtyShapes != 0 {
		changed |= catShapes
	}
	if flags&scene.DirtyLights != 0 {
		changed |= catLights
	}
	if flags&scene.DirtyCamera != 0 {
		changed |= catCamera
	}
	if flags&scene.DirtyBackground != 0 {
		changed |= catBackground
	}

	if !cc.part.equal(cc.state.partition) {
		changed |= catShapes
	}
	for _, shape := range cc.part.records() {
		if shape.GeometryDirty(cc.id) {
			changed |= catShapes
		} else if shape.IsDirty(cc.id) {
			changed |= catShapeProperties
		}
	}

	for _, l := range cc.scn.Lights() {
		if l.IsDirty(cc.id) {
			changed |= catLights
		}
	}
	if cc.scn.Camera().IsDirty(cc.id) {
		changed |= catCamera
	}

	if cc.textures.NeedsUpdate(cc.state.textures, cc.isDirtyTexture) {
		changed |= catTextures
	}
	if cc.materials.NeedsUpdate(cc.state.materials, cc.isDirtyMaterial) {
		changed |= catMaterials
	}
	if cc.materials.NeedsUpdate(cc.state.materials, nil) {
		changed |= catShapeProperties
	}
	if cc.volumes.NeedsUpdate(cc.state.volumes, cc.isDirtyVolume) {
		changed |= catVolumes
	}
	if cc.volumes.NeedsUpdate(cc.state.volumes, nil) {
		changed |= catShapeProperties
	}

	if cc.leaves.NeedsUpdate(cc.state.leaves, cc.isDirtyInputMap) {
		changed |= catInputMapLeaves
	}
	if cc.inputMaps.NeedsUpdate(cc.state.inputMaps, nil) {
		// Uber material records hold input map indices.
		changed |= catInputMaps | catMaterials
	}
	for _, root := range cc.inputMaps.All() {
		root.Walk(func(node *scene.InputMap) {
			if !node.IsLeaf() && node.IsDirty(cc.id) {
				changed |= catInputMaps
			}
		})
	}

	return changed.cascade()
}

func (cc *compileContext) isDirtyTexture(t *scene.Texture) bool { return t.IsDirty(cc.id) }
func (cc *compileContext) isDirtyMaterial(m *scene.Material) bool { return m.IsDirty(cc.id) }
func (cc *compileContext) isDirtyVolume(v *scene.Volume) bool { return v.IsDirty(cc.id) }
func (cc *compileContext) isDirtyInputMap(m *scene.InputMap) bool { return m.IsDirty(cc.id) }

// Write pending categories in dependency order. Each category is removed
// from the pending set once its buffers have been written.
func (cc *compileContext) writeCategories(ctx context.Context) error {
	steps := []struct {
		cat   category
		write func() (int, error)
	}{
		{catTextures, cc.writeTextures},
		{catMaterials, cc.writeMaterials},
		{catVolumes, cc.writeVolumes},
		{catInputMapLeaves, cc.writeInputMapLeaves},
		{catInputMaps, cc.writeInputMaps},
		{catShapes, cc.writeShapes},
		{catShapeProperties, cc.writeShapeProperties},
		{catLights, cc.writeLights},
		{catCamera, cc.writeCamera},
		{catBackground, cc.writeBackground},
	}

	for _, step := range steps {
		if cc.state.pending&step.cat == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// A geometry rebuild rewrites all shape properties.
		if step.cat == catShapeProperties && cc.state.pending&catShapes != 0 {
			continue
		}

		start := time.Now()
		cc.reallocs = 0
		items, err := step.write()
		if err != nil {
			return fmt.Errorf("compiler: could not update %s: %w", step.cat, err)
		}

		if step.cat == catShapes {
			cc.state.pending &^= catShapeProperties
		}
		cc.state.pending &^= step.cat

		stat := gpuscene.CategoryStats{
			Name:          step.cat.String(),
			Duration:      time.Since(start),
			Items:         items,
			Reallocations: cc.reallocs,
		}
		cc.stats.Categories = append(cc.stats.Categories, stat)
		cc.logger.Infof("updated %s (%d items, %d reallocations) in %d ms", stat.Name, stat.Items, stat.Reallocations, stat.Duration.Nanoseconds()/1e6)
	}
	return nil
}

// Mark every object referenced by the scene as clean and remember the
// collected sets for the next compile.
func (cc *compileContext) commit() {
	for _, shape := range cc.part.records() {
		shape.ClearDirty(cc.id)
		shape.ClearGeometryDirty(cc.id)
	}
	for _, mat := range cc.materials.All() {
		mat.ClearDirty(cc.id)
	}
	for _, tex := range cc.textures.All() {
		tex.ClearDirty(cc.id)
	}
	for _, vol := range cc.volumes.All() {
		vol.ClearDirty(cc.id)
	}
	for _, root := range cc.inputMaps.All() {
		root.Walk(func(node *scene.InputMap) { node.ClearDirty(cc.id) })
	}
	for _, l := range cc.scn.Lights() {
		l.ClearDirty(cc.id)
	}
	cc.scn.Camera().ClearDirty(cc.id)
	cc.scn.ClearDirtyFlags(cc.id, scene.DirtyAll)

	cc.state.materials = cc.materials.CreateBundle()
	cc.state.textures = cc.textures.CreateBundle()
	cc.state.volumes = cc.volumes.CreateBundle()
	cc.state.inputMaps = cc.inputMaps.CreateBundle()
	cc.state.leaves = cc.leaves.CreateBundle()
	cc.state.compiled = true
}

// Grow a buffer if it cannot hold count elements.
func ensureCapacity[T any](cc *compileContext, buf **device.TypedBuffer[T], name string, count int, flags device.MemFlags) error {
	realloc, err := device.EnsureCapacity(cc.devCtx, buf, name, count, flags)
	if err != nil {
		return err
	}
	if realloc {
		cc.reallocs++
		cc.logger.Debugf("allocated buffer %s for %d elements (%d bytes)", name, (*buf).Len(), (*buf).Size())
	}
	return nil
}

// Map a buffer for writing and pass its contents to fn.
func writeBuffer[T any](cc *compileContext, buf *device.TypedBuffer[T], fn func([]T) error) error {
	return device.WithMapped(cc.devCtx, transferQueue, buf, device.MapWrite, fn)
}
