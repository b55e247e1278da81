package compiler

import (
	"fmt"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/gpuscene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/shadergen"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// Align a texture data offset.
func alignTextureOffset(offset int) int {
	return (offset + gpuscene.TextureDataAlignment - 1) &^ (gpuscene.TextureDataAlignment - 1)
}

// Write texture descriptors and pack texture data into a single buffer. Each
// texture starts at an aligned offset.
func (cc *compileContext) writeTextures() (int, error) {
	snap := cc.state.snapshot

	offsets := make([]int, cc.textures.Len())
	dataSize := 0
	for idx, tex := range cc.textures.All() {
		offsets[idx] = dataSize
		dataSize = alignTextureOffset(dataSize + tex.Size())
	}

	if err := ensureCapacity(cc, &snap.Textures, "textures", cc.textures.Len(), device.MemReadOnly); err != nil {
		return 0, err
	}
	if err := ensureCapacity(cc, &snap.TextureData, "texture data", dataSize, device.MemReadOnly); err != nil {
		return 0, err
	}

	err := writeBuffer(cc, snap.Textures, func(out []gpuscene.Texture) error {
		for idx, tex := range cc.textures.All() {
			out[idx] = gpuscene.Texture{
				Width:      int32(tex.Width()),
				Height:     int32(tex.Height()),
				Depth:      int32(tex.Depth()),
				Format:     int32(tex.Format()),
				DataOffset: int32(offsets[idx]),
				Size:       int32(tex.Size()),
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	err = writeBuffer(cc, snap.TextureData, func(out []byte) error {
		for idx, tex := range cc.textures.All() {
			copy(out[offsets[idx]:], tex.Data())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	snap.NumTextures = cc.textures.Len()
	return snap.NumTextures, nil
}

// Write material records. Uber materials with configurations that have not
// been generated yet trigger a regeneration of the uber header.
func (cc *compileContext) writeMaterials() (int, error) {
	snap := cc.state.snapshot
	if err := ensureCapacity(cc, &snap.Materials, "materials", cc.materials.Len(), device.MemReadOnly); err != nil {
		return 0, err
	}

	newConfigs := 0
	for _, mat := range cc.materials.All() {
		if mat.Kind() != scene.UberMaterial {
			continue
		}
		if _, added := cc.uber.AddMaterial(mat); added {
			newConfigs++
		}
	}
	if newConfigs != 0 {
		cc.programs.AddHeader(shadergen.UberHeader, cc.uber.Source())
		cc.logger.Infof("generated %d new uber material configuration(s)", newConfigs)
	}

	err := writeBuffer(cc, snap.Materials, func(out []gpuscene.Material) error {
		for idx, mat := range cc.materials.All() {
			out[idx] = cc.materialRecord(mat)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	snap.NumMaterials = cc.materials.Len()
	return snap.NumMaterials, nil
}

func (cc *compileContext) materialRecord(mat *scene.Material) gpuscene.Material {
	var rec gpuscene.Material
	rec.NormalMapIdx = -1
	if mat.Thin() {
		rec.Thin = 1
	}

	switch mat.Kind() {
	case scene.SingleBxdfMaterial:
		rec.Type = uint32(mat.Bxdf())
		albedo, albedoIdx := cc.floatOrTexture(mat, "albedo")
		roughness, roughnessIdx := cc.floatOrTexture(mat, "roughness")
		ior := mat.MustInput("ior", scene.InputFloat4).Float[0]
		fresnel := mat.MustInput("fresnel", scene.InputFloat4).Float[0]
		rec.SetSingle(albedo, albedoIdx, ior, fresnel, roughness[0], roughnessIdx)

		if normal := mat.MustInput("normal", scene.InputTexture).Texture; normal != nil {
			rec.NormalMapIdx = cc.textureIndex(normal)
		} else if bump := mat.MustInput("bump", scene.InputTexture).Texture; bump != nil {
			rec.NormalMapIdx = cc.textureIndex(bump)
			rec.BumpFlag = 1
		}
	case scene.CompoundMaterial:
		switch mat.Compound() {
		case scene.CompoundMix:
			rec.Type = gpuscene.MaterialMix
		case scene.CompoundLayered:
			rec.Type = gpuscene.MaterialLayered
		case scene.CompoundFresnelBlend:
			rec.Type = gpuscene.MaterialFresnelBlend
		}
		base := cc.materialIndex(mat.MustInput("base_material", scene.InputMaterial).Material)
		top := cc.materialIndex(mat.MustInput("top_material", scene.InputMaterial).Material)
		ior := mat.MustInput("ior", scene.InputFloat4).Float[0]
		weight, weightIdx := cc.floatOrTexture(mat, "weight")
		rec.SetCompound(base, top, ior, weight[0], weightIdx)
	case scene.UberMaterial:
		rec.Type = gpuscene.MaterialUber
		cc.fillUberRecord(&rec, mat)
	}
	return rec
}

// Resolve an input that accepts either a constant or a texture.
func (cc *compileContext) floatOrTexture(mat *scene.Material, name string) (types.Vec4, int32) {
	in := mat.MustInput(name, scene.InputFloat4|scene.InputTexture)
	if in.Type == scene.InputTexture {
		return types.Vec4{}, cc.textureIndex(in.Texture)
	}
	return in.Float, -1
}

var (
	reflectionIORSlot = mustUberSlot("uberv2.reflection.ior")
	refractionIORSlot = mustUberSlot("uberv2.refraction.ior")
)

func mustUberSlot(name string) int {
	slot, ok := scene.UberInputSlot(name)
	if !ok {
		panic(fmt.Sprintf("compiler: unknown uber input %q", name))
	}
	return slot
}

// Fill the configuration key, flags and input map ids of an uber material.
// Inputs of disabled layers are set to -1.
func (cc *compileContext) fillUberRecord(rec *gpuscene.Material, mat *scene.Material) {
	mode := cc.uber.ResolveMode(mat)
	layers := mat.Layers()

	roots := mat.ActiveInputMaps(mode)
	inputs := make([]int32, len(roots))
	for slot, root := range roots {
		inputs[slot] = -1
		if root == nil {
			continue
		}
		idx, ok := cc.inputMaps.Index(root)
		if !ok {
			panic(fmt.Sprintf("compiler: input map for %s of material %q was not collected", scene.UberInputs[slot].Name, mat.Name))
		}
		inputs[slot] = int32(idx)
	}

	var flags uint32
	if mat.RefractionLinked() {
		flags |= gpuscene.UberFlagRefractionLinked
		if mode == scene.ReflectionPBR && layers.Has(scene.ReflectionLayer|scene.RefractionLayer) {
			inputs[refractionIORSlot] = inputs[reflectionIORSlot]
		}
	}
	if mat.EmissionDoubleSided() {
		flags |= gpuscene.UberFlagEmissionDoubleSided
	}
	if mat.SSSMultiscatter() {
		flags |= gpuscene.UberFlagSSSMultiscatter
	}

	rec.SetUber(uint32(cc.uber.ConfigOf(mat)), flags, inputs)
}

// Write volume records. Scenes without volumes leave the buffer untouched.
func (cc *compileContext) writeVolumes() (int, error) {
	snap := cc.state.snapshot
	snap.NumVolumes = cc.volumes.Len()
	if snap.NumVolumes == 0 {
		return 0, nil
	}

	if err := ensureCapacity(cc, &snap.Volumes, "volumes", snap.NumVolumes, device.MemReadOnly); err != nil {
		return 0, err
	}
	err := writeBuffer(cc, snap.Volumes, func(out []gpuscene.Volume) error {
		for idx, vol := range cc.volumes.All() {
			phase := gpuscene.PhaseUniform
			if vol.G() != 0 {
				phase = gpuscene.PhaseHenyeyGreenstein
			}
			out[idx] = gpuscene.Volume{
				Type:          gpuscene.VolumeHomogeneous,
				PhaseFunc:     phase,
				AbsorptionIdx: cc.textureIndex(vol.AbsorptionTexture()),
				G:             vol.G(),
				Absorption:    vol.Absorption().Vec4(0),
				Scattering:    vol.Scattering().Vec4(0),
				Emission:      vol.Emission().Vec4(0),
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return snap.NumVolumes, nil
}

// Serialize input map leaves into the input map data buffer.
func (cc *compileContext) writeInputMapLeaves() (int, error) {
	snap := cc.state.snapshot
	if err := ensureCapacity(cc, &snap.InputMapLeaves, "input map leaves", cc.leaves.Len(), device.MemReadOnly); err != nil {
		return 0, err
	}

	err := writeBuffer(cc, snap.InputMapLeaves, func(out []gpuscene.InputMapData) error {
		for idx, leaf := range cc.leaves.All() {
			out[idx] = cc.leafRecord(leaf)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	snap.NumInputMapLeaves = cc.leaves.Len()
	return snap.NumInputMapLeaves, nil
}

func (cc *compileContext) leafRecord(leaf *scene.InputMap) gpuscene.InputMapData {
	var rec gpuscene.InputMapData
	switch leaf.Op() {
	case scene.OpConstantFloat3:
		rec.SetFloat3(leaf.Value().Vec3())
	case scene.OpConstantFloat:
		rec.SetFloat(leaf.Value()[0])
	case scene.OpSampler, scene.OpSamplerBumpmap:
		rec.SetInt(cc.textureIndex(leaf.Texture()))
	default:
		panic(fmt.Sprintf("compiler: cannot serialize input map op %s as a leaf", leaf.Op()))
	}
	return rec
}

// Regenerate the input map header.
func (cc *compileContext) writeInputMaps() (int, error) {
	src := cc.inputMapGen.Generate(cc.inputMaps, cc.leaves)
	if cc.programs.AddHeader(shadergen.InputMapHeader, src) {
		cc.logger.Debugf("regenerated %s for %d input maps", shadergen.InputMapHeader, cc.inputMaps.Len())
	}
	return cc.inputMaps.Len(), nil
}
