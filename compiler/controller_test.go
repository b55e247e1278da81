package compiler

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/accel"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/accel/memory"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/config"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/device/host"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/gpuscene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/scene/builtin"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/shadergen"
	"github.com/GPUOpen-LibrariesAndSDKs/RadeonProRender-Baikal-sub002/types"
)

func TestCompileWithoutChangesIsStable(t *testing.T) {
	ctrl, devCtx, _ := newTestController(t, config.Default())
	scn := builtin.QuadScene()

	snap := mustCompile(t, ctrl, scn)
	vertices := host.Contents(snap.Vertices)
	shapes := host.Contents(snap.Shapes)
	materials := host.Contents(snap.Materials)
	bundle := ctrl.states[scn].materials
	maps := devCtx.Maps()

	again := mustCompile(t, ctrl, scn)
	if again != snap {
		t.Fatal("expected the same snapshot to be returned")
	}
	if devCtx.Maps() != maps {
		t.Fatalf("expected no buffer to be mapped by an up-to-date compile; got %d maps", devCtx.Maps()-maps)
	}
	if !reflect.DeepEqual(vertices, host.Contents(snap.Vertices)) {
		t.Fatal("expected vertex buffer contents to be unchanged")
	}
	if !reflect.DeepEqual(shapes, host.Contents(snap.Shapes)) {
		t.Fatal("expected shape buffer contents to be unchanged")
	}
	if !reflect.DeepEqual(materials, host.Contents(snap.Materials)) {
		t.Fatal("expected material buffer contents to be unchanged")
	}

	// Force a recompile that does not change the referenced set.
	scn.Shapes()[0].SetTransform(types.Ident4())
	mustCompile(t, ctrl, scn)
	if !bundle.Equal(ctrl.states[scn].materials) {
		t.Fatal("expected material indices to be stable across compiles")
	}
}

func TestExcludedMeshIsSerialized(t *testing.T) {
	ctrl, _, intersector := newTestController(t, config.Default())

	mesh := builtin.Quad(1)
	mesh.Name = "base"
	inst := scene.NewInstance(mesh)
	inst.Name = "inst"
	inst.SetTransform(types.Translate4(types.XYZ(2, 0, 0)))

	scn := newScene(mesh, inst)
	mustCompile(t, ctrl, scn)

	scn.DetachShape(mesh)
	snap := mustCompile(t, ctrl, scn)

	if snap.NumShapes != 2 {
		t.Fatalf("expected 2 shape records; got %d", snap.NumShapes)
	}
	if snap.NumVisibleShapes != 1 {
		t.Fatalf("expected 1 visible shape; got %d", snap.NumVisibleShapes)
	}
	if snap.NumVertices != len(mesh.Vertices()) {
		t.Fatalf("expected %d vertices; got %d", len(mesh.Vertices()), snap.NumVertices)
	}

	vertices := host.Contents(snap.Vertices)
	for i, v := range mesh.Vertices() {
		if exp := v.Vec4(1); vertices[i] != exp {
			t.Fatalf("expected vertex %d to be %v; got %v", i, exp, vertices[i])
		}
	}

	records := host.Contents(snap.Shapes)
	if records[0].ID != int32(mesh.ID()) || records[0].NumPrims != int32(mesh.NumFaces()) {
		t.Fatalf("expected record 0 to describe the excluded mesh; got %+v", records[0])
	}
	if records[1].ID != int32(inst.ID()) || records[1].StartVtx != 0 {
		t.Fatalf("expected record 1 to describe the instance; got %+v", records[1])
	}

	committed := intersector.Committed()
	if len(committed) != 1 || committed[0].Base == nil {
		t.Fatalf("expected only the instance to be attached to the intersector; got %d shapes", len(committed))
	}
	if committed[0].ID != int(inst.ID()) {
		t.Fatalf("expected attached shape id %d; got %d", inst.ID(), committed[0].ID)
	}
}

func TestTransformChangeSkipsGeometryRebuild(t *testing.T) {
	ctrl, devCtx, intersector := newTestController(t, config.Default())
	scn := builtin.InstancesScene()
	snap := mustCompile(t, ctrl, scn)

	before := intersector.Stats()
	allocs := devCtx.TotalAllocations()

	inst := scn.Shapes()[1]
	xform := types.Translate4(types.XYZ(0, 3, 0))
	inst.SetTransform(xform)
	mustCompile(t, ctrl, scn)

	after := intersector.Stats()
	if after.MeshesCreated != before.MeshesCreated || after.InstancesCreated != before.InstancesCreated {
		t.Fatalf("expected no intersector shapes to be created; got %+v -> %+v", before, after)
	}
	if after.Commits != before.Commits+1 {
		t.Fatalf("expected a single commit; got %d", after.Commits-before.Commits)
	}
	if devCtx.TotalAllocations() != allocs {
		t.Fatalf("expected no buffer allocations; got %d", devCtx.TotalAllocations()-allocs)
	}
	if got := updatedCategories(snap.LastCompile); !reflect.DeepEqual(got, []string{"shape properties", "lights"}) {
		t.Fatalf("expected only shape properties and lights to be updated; got %v", got)
	}

	idx := ctrl.states[scn].partition.recordIndex[inst]
	if got := host.Contents(snap.Shapes)[idx].Transform; got != xform.Rows() {
		t.Fatalf("expected transform %v; got %v", xform.Rows(), got)
	}
	if got := ctrl.states[scn].accelShapes[idx].(*memory.Shape).Transform; got != xform {
		t.Fatalf("expected intersector transform %v; got %v", xform, got)
	}
}

func TestTransformChangeUpdatesLightWeights(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())

	panel := builtin.Quad(1)
	scn := newScene(panel)
	scn.AttachLight(scene.NewAreaLight(panel, 0, types.XYZ(1, 1, 1)))
	scn.AttachLight(scene.NewAreaLight(panel, 1, types.XYZ(1, 1, 1)))
	scn.AttachLight(scene.NewPointLight(types.XYZ(0, 2, 0), types.XYZ(1, 1, 1)))
	snap := mustCompile(t, ctrl, scn)

	n := len(scn.Lights())
	before := append([]uint32(nil), host.Contents(snap.LightDistribution)[2+n:2+2*n]...)

	panel.SetTransform(types.Scale4(types.XYZ(2, 2, 2)))
	mustCompile(t, ctrl, scn)

	var rewritten bool
	for _, name := range updatedCategories(snap.LastCompile) {
		rewritten = rewritten || name == "lights"
	}
	if !rewritten {
		t.Fatalf("expected lights to be updated after a transform change; got %v", updatedCategories(snap.LastCompile))
	}

	after := host.Contents(snap.LightDistribution)[2+n : 2+2*n]
	if reflect.DeepEqual(before, after) {
		t.Fatal("expected the light pdf to change after scaling the emitting mesh")
	}
	for idx := 0; idx < 2; idx++ {
		oldPDF, newPDF := math.Float32frombits(before[idx]), math.Float32frombits(after[idx])
		if newPDF <= oldPDF {
			t.Fatalf("[light %d] expected area light pdf to increase from %f; got %f", idx, oldPDF, newPDF)
		}
	}
	oldPDF, newPDF := math.Float32frombits(before[2]), math.Float32frombits(after[2])
	if newPDF >= oldPDF {
		t.Fatalf("expected point light pdf to decrease from %f; got %f", oldPDF, newPDF)
	}
}

func TestPartitionWithMeshesInstancesAndExcludedBases(t *testing.T) {
	ctrl, _, intersector := newTestController(t, config.Default())

	meshA := builtin.Quad(1)
	meshB := builtin.Box(types.XYZ(1, 1, 1))
	meshC := builtin.Sphere(1, 4, 6)
	inst1 := scene.NewInstance(meshB)
	inst2 := scene.NewInstance(meshB)
	inst3 := scene.NewInstance(meshA)
	inst1.SetTransform(types.Translate4(types.XYZ(2, 0, 0)))
	inst2.SetTransform(types.Translate4(types.XYZ(-2, 0, 0)))
	inst3.SetTransform(types.Translate4(types.XYZ(0, 2, 0)))

	// meshB is only reachable through its instances.
	scn := newScene(meshA, inst1, meshC, inst2, inst3)
	snap := mustCompile(t, ctrl, scn)

	if snap.NumShapes != 6 {
		t.Fatalf("expected 6 shape records; got %d", snap.NumShapes)
	}
	if snap.NumVisibleShapes != 5 {
		t.Fatalf("expected 5 visible shapes; got %d", snap.NumVisibleShapes)
	}
	numA, numC, numB := len(meshA.Vertices()), len(meshC.Vertices()), len(meshB.Vertices())
	if exp := numA + numC + numB; snap.NumVertices != exp {
		t.Fatalf("expected %d vertices; got %d", exp, snap.NumVertices)
	}

	records := host.Contents(snap.Shapes)
	order := []scene.Shape{meshA, meshC, meshB, inst1, inst2, inst3}
	for idx, shape := range order {
		if records[idx].ID != int32(shape.ID()) {
			t.Fatalf("[record %d] expected shape id %d; got %d", idx, shape.ID(), records[idx].ID)
		}
		if got := ctrl.states[scn].partition.recordIndex[shape]; got != idx {
			t.Fatalf("[record %d] expected record index %d; got %d", idx, idx, got)
		}
	}

	expStartVtx := []int32{0, int32(numA), int32(numA + numC)}
	for idx, exp := range expStartVtx {
		if records[idx].StartVtx != exp {
			t.Fatalf("[record %d] expected start vertex %d; got %d", idx, exp, records[idx].StartVtx)
		}
	}

	for idx, baseIdx := range map[int]int{3: 2, 4: 2, 5: 0} {
		if records[idx].StartVtx != records[baseIdx].StartVtx || records[idx].StartIdx != records[baseIdx].StartIdx {
			t.Fatalf("[record %d] expected geometry of record %d (vtx %d, idx %d); got vtx %d, idx %d",
				idx, baseIdx, records[baseIdx].StartVtx, records[baseIdx].StartIdx, records[idx].StartVtx, records[idx].StartIdx)
		}
	}

	committed := intersector.Committed()
	if len(committed) != 5 {
		t.Fatalf("expected 5 shapes attached to the intersector; got %d", len(committed))
	}
	var meshes, instances int
	for _, shape := range committed {
		if shape.Base == nil {
			meshes++
		} else {
			instances++
		}
	}
	if meshes != 2 || instances != 3 {
		t.Fatalf("expected 2 meshes and 3 instances to be attached; got %d and %d", meshes, instances)
	}
}

func TestMaterialChangeOnlyRewritesMaterials(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	scn := builtin.QuadScene()
	snap := mustCompile(t, ctrl, scn)

	mat := scn.Shapes()[0].Material()
	if err := mat.SetInput("albedo", scene.Float4Value(types.XYZW(0.1, 0.2, 0.3, 1))); err != nil {
		t.Fatal(err)
	}
	mustCompile(t, ctrl, scn)

	if got := updatedCategories(snap.LastCompile); !reflect.DeepEqual(got, []string{"materials"}) {
		t.Fatalf("expected only materials to be updated; got %v", got)
	}
	albedo, texIdx := host.Contents(snap.Materials)[0].Albedo()
	if albedo != types.XYZW(0.1, 0.2, 0.3, 1) || texIdx != -1 {
		t.Fatalf("expected updated albedo; got %v (texture %d)", albedo, texIdx)
	}
}

func TestBuffersOnlyGrow(t *testing.T) {
	ctrl, devCtx, _ := newTestController(t, config.Default())

	mesh := builtin.Quad(1)
	scn := newScene(mesh)
	snap := mustCompile(t, ctrl, scn)
	if got := devCtx.Allocations("vertices"); got != 1 {
		t.Fatalf("expected 1 vertex buffer allocation; got %d", got)
	}
	capacity := snap.Vertices.Len()

	// Shrink.
	if err := mesh.SetGeometry(mesh.Vertices()[:3], nil, nil, []uint32{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	mustCompile(t, ctrl, scn)
	if got := devCtx.Allocations("vertices"); got != 1 {
		t.Fatalf("expected shrinking geometry to reuse the vertex buffer; got %d allocations", got)
	}
	if snap.Vertices.Len() != capacity || snap.NumVertices != 3 {
		t.Fatalf("expected capacity %d with 3 vertices in use; got capacity %d with %d vertices", capacity, snap.Vertices.Len(), snap.NumVertices)
	}

	// Grow.
	sphere := builtin.Sphere(1, 8, 8)
	if err := mesh.SetGeometry(sphere.Vertices(), sphere.Normals(), sphere.UVs(), sphere.Indices()); err != nil {
		t.Fatal(err)
	}
	mustCompile(t, ctrl, scn)
	if got := devCtx.Allocations("vertices"); got != 2 {
		t.Fatalf("expected growing geometry to reallocate the vertex buffer; got %d allocations", got)
	}
	if snap.Vertices.Len() != len(sphere.Vertices()) {
		t.Fatalf("expected capacity %d; got %d", len(sphere.Vertices()), snap.Vertices.Len())
	}

	// Missing attributes are uploaded as zeros.
	if err := mesh.SetGeometry(sphere.Vertices(), nil, nil, sphere.Indices()); err != nil {
		t.Fatal(err)
	}
	mustCompile(t, ctrl, scn)
	for i, n := range host.Contents(snap.Normals) {
		if n != (types.Vec4{}) {
			t.Fatalf("expected normal %d to be zero; got %v", i, n)
		}
	}
}

func TestLights(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	scn := builtin.UberScene()
	snap := mustCompile(t, ctrl, scn)

	lights := scn.Lights()
	if snap.NumLights != len(lights) {
		t.Fatalf("expected %d lights; got %d", len(lights), snap.NumLights)
	}

	var (
		panel  scene.Shape
		envIdx = -1
	)
	for idx, l := range lights {
		if l.Kind() == scene.AreaLight {
			panel = l.Shape()
		}
		if l.Kind() == scene.ImageBasedLight && envIdx == -1 {
			envIdx = idx
		}
	}
	if snap.EnvMapIdx != int32(envIdx) {
		t.Fatalf("expected env map index %d; got %d", envIdx, snap.EnvMapIdx)
	}

	panelIdx := int32(ctrl.states[scn].partition.recordIndex[panel])
	for idx, rec := range host.Contents(snap.Lights)[:len(lights)] {
		switch lights[idx].Kind() {
		case scene.AreaLight:
			if rec.Type != gpuscene.LightArea || rec.ShapeIdx != panelIdx || rec.PrimIdx != int32(lights[idx].Primitive()) {
				t.Fatalf("[light %d] unexpected area light record %+v", idx, rec)
			}
		case scene.ImageBasedLight:
			if rec.Type != gpuscene.LightIBL || rec.TexIdx < 0 || rec.BackgroundTexIdx < 0 || rec.ReflectionTexIdx != -1 {
				t.Fatalf("[light %d] unexpected image based light record %+v", idx, rec)
			}
		}
	}

	// The light count, n+1 cdf values and n pdf values.
	dist := host.Contents(snap.LightDistribution)
	if exp := 2 + 2*len(lights); len(dist) != exp {
		t.Fatalf("expected light distribution to hold %d words; got %d", exp, len(dist))
	}
	if dist[0] != uint32(len(lights)) {
		t.Fatalf("expected light count %d in distribution header; got %d", len(lights), dist[0])
	}

	// Removing every light leaves an empty distribution.
	for _, l := range append([]*scene.Light(nil), lights...) {
		scn.DetachLight(l)
	}
	mustCompile(t, ctrl, scn)
	if snap.NumLights != 0 || snap.EnvMapIdx != -1 {
		t.Fatalf("expected no lights and no env map; got %d lights, env map %d", snap.NumLights, snap.EnvMapIdx)
	}
	if head := host.Contents(snap.LightDistribution)[:2]; head[0] != 0 || head[1] != 0 {
		t.Fatalf("expected an empty distribution header; got %v", head)
	}
}

func TestLightKinds(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	scn := builtin.InstancesScene()
	snap := mustCompile(t, ctrl, scn)

	recs := host.Contents(snap.Lights)
	if recs[0].Type != gpuscene.LightDirectional || recs[0].Direction != scn.Lights()[0].Direction().Vec4(0) {
		t.Fatalf("unexpected directional light record %+v", recs[0])
	}
	spot := scn.Lights()[1]
	if recs[1].Type != gpuscene.LightSpot || recs[1].Position != spot.Position().Vec4(1) {
		t.Fatalf("unexpected spot light record %+v", recs[1])
	}
	if recs[1].Cone[0] != spot.Cone()[0] || recs[1].Cone[1] != spot.Cone()[1] {
		t.Fatalf("expected cone %v; got %v", spot.Cone(), recs[1].Cone)
	}
	if snap.EnvMapIdx != -1 {
		t.Fatalf("expected no env map; got %d", snap.EnvMapIdx)
	}
}

func TestCamera(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	scn := builtin.QuadScene()
	snap := mustCompile(t, ctrl, scn)
	if snap.CameraType != gpuscene.CameraPerspective {
		t.Fatalf("expected a perspective camera; got %s", snap.CameraType)
	}

	scn.Camera().SetAperture(0.1)
	mustCompile(t, ctrl, scn)
	if snap.CameraType != gpuscene.CameraPhysicalPerspective {
		t.Fatalf("expected a physical camera; got %s", snap.CameraType)
	}
	if got := updatedCategories(snap.LastCompile); !reflect.DeepEqual(got, []string{"camera"}) {
		t.Fatalf("expected only the camera to be updated; got %v", got)
	}

	rec := host.Contents(snap.Camera)[0]
	if rec.Aperture != 0.1 || rec.VolumeIdx != -1 || rec.AspectRatio != scn.Camera().AspectRatio() {
		t.Fatalf("unexpected camera record %+v", rec)
	}

	scn.SetCamera(scene.NewOrthographicCamera(types.XYZ(0, 5, 0), types.Vec3{}, types.XYZ(0, 0, 1)))
	mustCompile(t, ctrl, scn)
	if snap.CameraType != gpuscene.CameraOrthographic {
		t.Fatalf("expected an orthographic camera; got %s", snap.CameraType)
	}
}

func TestBackground(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	scn := builtin.QuadScene()
	snap := mustCompile(t, ctrl, scn)
	if snap.BackgroundIdx != -1 {
		t.Fatalf("expected no background; got %d", snap.BackgroundIdx)
	}

	scn.SetBackground(builtin.Solid(2, 2, types.XYZW(1, 0, 0, 1)))
	mustCompile(t, ctrl, scn)
	if snap.BackgroundIdx != 0 || snap.NumTextures != 1 {
		t.Fatalf("expected background texture 0 out of 1; got %d out of %d", snap.BackgroundIdx, snap.NumTextures)
	}
}

func TestUberMaterials(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())

	glass := scene.NewUberMaterial(scene.ReflectionLayer | scene.RefractionLayer)
	glass.SetRefractionLinked(true)
	quad := builtin.Quad(1)
	quad.SetMaterial(glass)
	snap := mustCompile(t, ctrl, newScene(quad))

	rec := host.Contents(snap.Materials)[0]
	if rec.Type != gpuscene.MaterialUber {
		t.Fatalf("expected an uber material record; got type %d", rec.Type)
	}
	if rec.UberKey() != uint32(shadergen.ConfigFor(glass.Layers(), scene.ReflectionPBR)) {
		t.Fatalf("unexpected configuration key 0x%04X", rec.UberKey())
	}
	if rec.UberFlags()&gpuscene.UberFlagRefractionLinked == 0 {
		t.Fatal("expected the refraction linked flag to be set")
	}
	if reflIOR := rec.UberInput(reflectionIORSlot); reflIOR < 0 || rec.UberInput(refractionIORSlot) != reflIOR {
		t.Fatalf("expected refraction ior to read the reflection ior map %d; got %d", reflIOR, rec.UberInput(refractionIORSlot))
	}
	diffuseSlot := mustUberSlot("uberv2.diffuse.color")
	if got := rec.UberInput(diffuseSlot); got != -1 {
		t.Fatalf("expected disabled diffuse input to be -1; got %d", got)
	}

	for _, header := range []string{shadergen.UberHeader, shadergen.InputMapHeader} {
		if _, ok := ctrl.Programs().Header(header); !ok {
			t.Fatalf("expected header %s to be registered", header)
		}
	}
	src, _ := ctrl.Programs().Header(shadergen.UberHeader)
	if fn := "UberV2PrepareInputs_" + shadergen.ConfigFor(glass.Layers(), scene.ReflectionPBR).String(); !strings.Contains(src, fn) {
		t.Fatalf("expected generated source to define %s", fn)
	}
}

func TestUberMaterialDefaultMode(t *testing.T) {
	opts := config.Default()
	opts.Shading.DefaultReflectionMode = config.ReflectionMetalness
	ctrl, _, _ := newTestController(t, opts)

	metal := scene.NewUberMaterial(scene.DiffuseLayer | scene.ReflectionLayer)
	quad := builtin.Quad(1)
	quad.SetMaterial(metal)
	snap := mustCompile(t, ctrl, newScene(quad))

	rec := host.Contents(snap.Materials)[0]
	if rec.UberKey()&uint32(shadergen.MetalnessBit) == 0 {
		t.Fatalf("expected the metalness bit in key 0x%04X", rec.UberKey())
	}
	if rec.UberInput(reflectionIORSlot) != -1 || rec.UberInput(mustUberSlot("uberv2.reflection.metalness")) < 0 {
		t.Fatal("expected the metalness input to replace the reflection ior input")
	}
}

func TestDefaultMaterial(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	snap := mustCompile(t, ctrl, newScene(builtin.Quad(1)))

	if snap.NumMaterials != 1 {
		t.Fatalf("expected 1 material; got %d", snap.NumMaterials)
	}
	rec := host.Contents(snap.Materials)[0]
	if rec.Type != uint32(scene.BxdfLambert) {
		t.Fatalf("expected the default lambert material; got type %d", rec.Type)
	}
	if got := host.Contents(snap.Shapes)[0].MaterialIdx; got != 0 {
		t.Fatalf("expected shape to use material 0; got %d", got)
	}
}

func TestInstanceInheritsBaseMaterial(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	scn := builtin.InstancesScene()
	snap := mustCompile(t, ctrl, scn)

	records := host.Contents(snap.Shapes)
	part := ctrl.states[scn].partition
	inst := scn.Shapes()[1].(*scene.Instance)
	base := part.recordIndex[inst.Base()]
	if records[part.recordIndex[inst]].MaterialIdx != records[base].MaterialIdx {
		t.Fatalf("expected instance to use base material %d; got %d", records[base].MaterialIdx, records[part.recordIndex[inst]].MaterialIdx)
	}
}

func TestAccelOptions(t *testing.T) {
	opts := config.Default()
	opts.Accel.Force2Level = true
	ctrl, _, intersector := newTestController(t, opts)
	mustCompile(t, ctrl, builtin.QuadScene())

	specs := []struct {
		name string
		exp  interface{}
	}{
		{accel.OptionAccelType, opts.Accel.Type},
		{accel.OptionBuilder, opts.Accel.Builder},
		{accel.OptionSAHBins, opts.Accel.SAHBins},
		{accel.OptionForce2Level, float32(1)},
	}
	for _, spec := range specs {
		if got := intersector.Option(spec.name); got != spec.exp {
			t.Fatalf("expected option %s to be %v; got %v", spec.name, spec.exp, got)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())

	if _, err := ctrl.CompileScene(context.Background(), newScene()); !errors.Is(err, ErrNoShapes) {
		t.Fatalf("expected ErrNoShapes; got %v", err)
	}

	noCamera := scene.New()
	noCamera.AttachShape(builtin.Quad(1))
	if _, err := ctrl.CompileScene(context.Background(), noCamera); !errors.Is(err, ErrNoCamera) {
		t.Fatalf("expected ErrNoCamera; got %v", err)
	}

	nested := scene.NewInstance(scene.NewInstance(builtin.Quad(1)))
	if _, err := ctrl.CompileScene(context.Background(), newScene(nested)); !errors.Is(err, ErrInvalidInstance) {
		t.Fatalf("expected ErrInvalidInstance; got %v", err)
	}

	detached := newScene(builtin.Quad(1))
	detached.AttachLight(scene.NewAreaLight(builtin.Quad(1), 0, types.XYZ(1, 1, 1)))
	if _, err := ctrl.CompileScene(context.Background(), detached); !errors.Is(err, ErrInvalidAreaLight) {
		t.Fatalf("expected ErrInvalidAreaLight; got %v", err)
	}

	quad := builtin.Quad(1)
	badPrim := newScene(quad)
	badPrim.AttachLight(scene.NewAreaLight(quad, quad.NumFaces(), types.XYZ(1, 1, 1)))
	if _, err := ctrl.CompileScene(context.Background(), badPrim); !errors.Is(err, ErrInvalidAreaLight) {
		t.Fatalf("expected ErrInvalidAreaLight; got %v", err)
	}
}

func TestCancelledCompileIsRetried(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	scn := builtin.QuadScene()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ctrl.CompileScene(ctx, scn); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled; got %v", err)
	}
	if pending := ctrl.states[scn].pending; pending != catAll {
		t.Fatalf("expected all categories to remain pending; got %s", pending)
	}

	snap := mustCompile(t, ctrl, scn)
	if ctrl.states[scn].pending != 0 {
		t.Fatalf("expected no pending categories; got %s", ctrl.states[scn].pending)
	}
	if snap.NumShapes != 1 || snap.NumLights != 1 {
		t.Fatalf("expected 1 shape and 1 light; got %d and %d", snap.NumShapes, snap.NumLights)
	}
}

func TestReleaseScene(t *testing.T) {
	ctrl, devCtx, intersector := newTestController(t, config.Default())
	scn := builtin.InstancesScene()
	mustCompile(t, ctrl, scn)

	ctrl.ReleaseScene(scn)
	if count, _ := devCtx.Live(); count != 0 {
		t.Fatalf("expected all buffers to be released; got %d live buffers", count)
	}
	if intersector.LiveShapes() != 0 {
		t.Fatalf("expected all intersector shapes to be deleted; got %d", intersector.LiveShapes())
	}

	// Compiling a released scene starts from scratch.
	snap := mustCompile(t, ctrl, scn)
	if snap.NumShapes != len(scn.Shapes())+1 {
		t.Fatalf("expected %d shape records; got %d", len(scn.Shapes())+1, snap.NumShapes)
	}
	ctrl.Close()
	if count, _ := devCtx.Live(); count != 0 {
		t.Fatalf("expected Close to release all buffers; got %d live buffers", count)
	}
}

func TestLeafRecordPanicsOnInnerNode(t *testing.T) {
	ctrl, _, _ := newTestController(t, config.Default())
	scn := builtin.QuadScene()
	cc, err := ctrl.newCompileContext(scn, &sceneState{snapshot: gpuscene.NewSnapshot()})
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected serializing an inner node as a leaf to panic")
		}
	}()
	cc.leafRecord(scene.Add(scene.ConstantFloat(1), scene.ConstantFloat(2)))
}

func newTestController(t *testing.T, opts config.Options) (*Controller, *host.Context, *memory.Intersector) {
	t.Helper()
	devCtx := host.NewContext()
	intersector := memory.New()
	ctrl, err := New(intersector, devCtx, opts)
	if err != nil {
		t.Fatal(err)
	}
	return ctrl, devCtx, intersector
}

func newScene(shapes ...scene.Shape) *scene.Scene {
	scn := scene.New()
	for _, shape := range shapes {
		scn.AttachShape(shape)
	}
	scn.SetCamera(scene.NewPerspectiveCamera(types.XYZ(0, 1, 3), types.Vec3{}, types.XYZ(0, 1, 0)))
	return scn
}

func mustCompile(t *testing.T, ctrl *Controller, scn *scene.Scene) *gpuscene.Snapshot {
	t.Helper()
	snap, err := ctrl.CompileScene(context.Background(), scn)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func updatedCategories(stats gpuscene.CompileStats) []string {
	var names []string
	for _, cat := range stats.Categories {
		names = append(names, cat.Name)
	}
	return names
}
