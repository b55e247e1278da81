// Package builtin provides procedurally generated scenes for exercising the
// scene compiler without any asset files.
package builtin

import (
	"fmt"
	"sort"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
	"github.com/chewxy/math32"
)

var builders = map[string]func() *scene.Scene{
	"quad":      QuadScene,
	"instances": InstancesScene,
	"uber":      UberScene,
}

// Get the names of the available scenes in sorted order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build a scene by name.
func Build(name string) (*scene.Scene, error) {
	builder, exists := builders[name]
	if !exists {
		return nil, fmt.Errorf("builtin: unknown scene %q; available scenes: %v", name, Names())
	}
	return builder(), nil
}

// A single lambert quad lit by a point light.
func QuadScene() *scene.Scene {
	scn := scene.New()
	scn.Name = "quad"

	mat := scene.NewSingleBxdfMaterial(scene.BxdfLambert)
	mat.Name = "lambert"

	quad := Quad(2)
	quad.Name = "floor"
	quad.SetMaterial(mat)
	scn.AttachShape(quad)

	scn.AttachLight(scene.NewPointLight(types.XYZ(0, 2, 0), types.XYZ(10, 10, 10)))
	scn.SetCamera(scene.NewPerspectiveCamera(types.XYZ(0, 2, 4), types.Vec3{}, types.XYZ(0, 1, 0)))
	return scn
}

// A ring of sphere instances. The base sphere is not attached to the scene so
// it is only reachable through the instances.
func InstancesScene() *scene.Scene {
	scn := scene.New()
	scn.Name = "instances"

	floorMat := scene.NewSingleBxdfMaterial(scene.BxdfLambert)
	floorMat.Name = "floor"
	if err := floorMat.SetInput("albedo", scene.TextureValue(Checker(64, 8, types.XYZ(0.8, 0.8, 0.8), types.XYZ(0.2, 0.2, 0.2)))); err != nil {
		panic(err)
	}

	floor := Quad(20)
	floor.Name = "floor"
	floor.SetMaterial(floorMat)
	scn.AttachShape(floor)

	chrome := scene.NewSingleBxdfMaterial(scene.BxdfMicrofacetGGX)
	chrome.Name = "chrome"
	if err := chrome.SetInput("roughness", scene.Float4Value(types.Splat4(0.05))); err != nil {
		panic(err)
	}
	red := scene.NewSingleBxdfMaterial(scene.BxdfLambert)
	red.Name = "red"
	if err := red.SetInput("albedo", scene.Float4Value(types.XYZW(0.8, 0.1, 0.1, 1))); err != nil {
		panic(err)
	}
	blend := scene.NewCompoundMaterial(scene.CompoundFresnelBlend, red, chrome)
	blend.Name = "coated-red"

	base := Sphere(0.5, 16, 32)
	base.Name = "sphere"
	base.SetMaterial(red)

	const count = 8
	for i := 0; i < count; i++ {
		angle := float32(i) * 2 * math32.Pi / count
		inst := scene.NewInstance(base)
		inst.Name = fmt.Sprintf("sphere-%d", i)
		inst.SetTransform(types.Translate4(types.XYZ(3*math32.Cos(angle), 0.5, 3*math32.Sin(angle))))
		switch i % 3 {
		case 1:
			inst.SetMaterial(chrome)
		case 2:
			inst.SetMaterial(blend)
		}
		scn.AttachShape(inst)
	}

	scn.AttachLight(scene.NewDirectionalLight(types.XYZ(-1, -1, -1), types.XYZ(2, 2, 2)))
	scn.AttachLight(scene.NewSpotLight(types.XYZ(0, 5, 0), types.XYZ(0, -1, 0), types.XYZ(20, 20, 20), math32.Cos(0.3), math32.Cos(0.5)))
	scn.SetCamera(scene.NewPerspectiveCamera(types.XYZ(0, 4, 8), types.Vec3{}, types.XYZ(0, 1, 0)))
	return scn
}

// A row of spheres exploring uber material layer combinations, an emissive
// panel and an environment light.
func UberScene() *scene.Scene {
	scn := scene.New()
	scn.Name = "uber"

	floorMat := scene.NewUberMaterial(scene.DiffuseLayer)
	floorMat.Name = "floor"
	checker := Checker(128, 16, types.XYZ(0.9, 0.9, 0.9), types.XYZ(0.1, 0.1, 0.1))
	mustSet(floorMat, "uberv2.diffuse.color", scene.InputMapValueOf(
		scene.Mul(scene.Sampler(checker), scene.ConstantFloat3(types.XYZ(0.8, 0.8, 0.8))),
	))

	floor := Quad(20)
	floor.Name = "floor"
	floor.SetMaterial(floorMat)
	scn.AttachShape(floor)

	materials := []*scene.Material{
		uberMaterial("diffuse", scene.DiffuseLayer),
		uberMaterial("plastic", scene.DiffuseLayer|scene.ReflectionLayer),
		uberMaterial("car-paint", scene.DiffuseLayer|scene.ReflectionLayer|scene.CoatingLayer),
		uberMaterial("glass", scene.RefractionLayer|scene.ReflectionLayer),
		uberMaterial("cutout", scene.DiffuseLayer|scene.TransparencyLayer),
		uberMaterial("skin", scene.DiffuseLayer|scene.SSSLayer),
	}

	metal := materials[2]
	metal.SetReflectionMode(scene.ReflectionMetalness)
	mustSet(metal, "uberv2.reflection.metalness", scene.Float4Value(types.Splat4(0.8)))
	mustSet(metal, "uberv2.diffuse.color", scene.Float4Value(types.XYZW(0.6, 0.05, 0.05, 1)))

	glass := materials[3]
	glass.SetRefractionLinked(true)
	mustSet(glass, "uberv2.refraction.roughness", scene.Float4Value(types.Splat4(0)))
	mustSet(glass, "uberv2.reflection.roughness", scene.Float4Value(types.Splat4(0)))

	mustSet(materials[4], "uberv2.transparency", scene.Float4Value(types.Splat4(0.5)))

	skin := materials[5]
	skin.SetSSSMultiscatter(true)
	mustSet(skin, "uberv2.sss.scatter_color", scene.Float4Value(types.XYZW(0.9, 0.4, 0.3, 0)))
	mustSet(skin, "uberv2.sss.scatter_distance", scene.Float4Value(types.Splat4(0.1)))

	sphere := Sphere(0.5, 16, 32)
	sphere.Name = "sphere"
	for i, mat := range materials {
		var shape scene.Shape = sphere
		if i > 0 {
			shape = scene.NewInstance(sphere)
		}
		shape.SetMaterial(mat)
		shape.SetTransform(types.Translate4(types.XYZ(float32(i)*1.5-3.75, 0.5, 0)))
		scn.AttachShape(shape)
	}
	sphere.SetVolume(scene.NewVolume(types.XYZ(0.1, 0.1, 0.1), types.XYZ(0.5, 0.5, 0.5), types.Vec3{}, 0.2))

	panelMat := uberMaterial("panel", scene.EmissionLayer)
	panelMat.SetEmissionDoubleSided(true)
	mustSet(panelMat, "uberv2.emission.color", scene.Float4Value(types.XYZW(8, 8, 8, 1)))

	panel := Quad(2)
	panel.Name = "panel"
	panel.SetMaterial(panelMat)
	panel.SetTransform(types.Translate4(types.XYZ(0, 4, 0)).Mul4(types.Rotate4(math32.Pi, types.XYZ(1, 0, 0))))
	scn.AttachShape(panel)
	for prim := 0; prim < panel.NumFaces(); prim++ {
		scn.AttachLight(scene.NewAreaLight(panel, prim, types.XYZ(8, 8, 8)))
	}

	sky := SkyGradient(64, 32, types.XYZ(1, 1, 1), types.XYZ(0.3, 0.5, 0.9))
	ibl := scene.NewImageBasedLight(sky, 1)
	ibl.SetBackgroundTexture(Solid(4, 4, types.XYZW(0.05, 0.05, 0.05, 1)))
	scn.AttachLight(ibl)
	scn.SetBackground(sky)

	cam := scene.NewPerspectiveCamera(types.XYZ(0, 2, 7), types.XYZ(0, 0.5, 0), types.XYZ(0, 1, 0))
	cam.SetAperture(0.01)
	cam.SetFocusDistance(7)
	scn.SetCamera(cam)
	return scn
}

func uberMaterial(name string, layers scene.LayerMask) *scene.Material {
	mat := scene.NewUberMaterial(layers)
	mat.Name = name
	return mat
}

func mustSet(mat *scene.Material, input string, value scene.InputValue) {
	if err := mat.SetInput(input, value); err != nil {
		panic(err)
	}
}
