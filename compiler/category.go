package compiler

import (
	"strings"
)

// A category of device data that is rewritten as a unit.
type category uint32

const (
	catTextures category = 1 << iota
	catMaterials
	catVolumes
	catInputMapLeaves
	catInputMaps
	catShapes
	catShapeProperties
	catLights
	catCamera
	catBackground

	catAll = catTextures | catMaterials | catVolumes | catInputMapLeaves | catInputMaps |
		catShapes | catShapeProperties | catLights | catCamera | catBackground
)

var categoryNames = []struct {
	cat  category
	name string
}{
	{catTextures, "textures"},
	{catMaterials, "materials"},
	{catVolumes, "volumes"},
	{catInputMapLeaves, "input map leaves"},
	{catInputMaps, "input maps"},
	{catShapes, "shapes"},
	{catShapeProperties, "shape properties"},
	{catLights, "lights"},
	{catCamera, "camera"},
	{catBackground, "background"},
}

func (c category) String() string {
	var parts []string
	for _, cn := range categoryNames {
		if c&cn.cat != 0 {
			parts = append(parts, cn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// Expand a set of changed categories with the categories whose records
// embed indices into them.
func (c category) cascade() category {
	if c&catTextures != 0 {
		c |= catMaterials | catLights | catVolumes | catInputMapLeaves
	}
	if c&catVolumes != 0 {
		c |= catCamera
	}
	if c&catInputMapLeaves != 0 {
		c |= catInputMaps
	}
	if c&catShapes != 0 {
		// Area lights reference shape records.
		c |= catLights
	}
	if c&catShapeProperties != 0 {
		// Light power depends on shape transforms and the scene radius.
		c |= catLights
	}
	return c
}
