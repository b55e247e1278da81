package scene

import (
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

// Volume describes a homogeneous participating medium.
type Volume struct {
	Object

	absorption        types.Vec3
	absorptionTexture *Texture
	scattering        types.Vec3
	emission          types.Vec3
	g                 float32
}

func NewVolume(absorption, scattering, emission types.Vec3, g float32) *Volume {
	return &Volume{absorption: absorption, scattering: scattering, emission: emission, g: g}
}

func (v *Volume) Absorption() types.Vec3 { return v.absorption }
func (v *Volume) AbsorptionTexture() *Texture { return v.absorptionTexture }
func (v *Volume) Scattering() types.Vec3 { return v.scattering }
func (v *Volume) Emission() types.Vec3 { return v.emission }

// Henyey-Greenstein phase function asymmetry.
func (v *Volume) G() float32 { return v.g }

func (v *Volume) SetAbsorption(a types.Vec3) {
	v.absorption = a
	v.SetDirty()
}

// Modulate absorption with a texture. Pass nil to clear it.
func (v *Volume) SetAbsorptionTexture(tex *Texture) {
	v.absorptionTexture = tex
	v.SetDirty()
}

func (v *Volume) SetScattering(s types.Vec3) {
	v.scattering = s
	v.SetDirty()
}

func (v *Volume) SetEmission(e types.Vec3) {
	v.emission = e
	v.SetDirty()
}

func (v *Volume) SetG(g float32) {
	v.g = g
	v.SetDirty()
}
