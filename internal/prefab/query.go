package prefab

// The accessors below are the try-get surface used by the lifecycle systems.
// Each returns false when the prefab is unknown or lacks the requested part.

func (c *Catalog) Geometry(id ID) (ObjectGeometry, bool) {
	p, ok := c.prefabs[id]
	if !ok || p.Geometry == nil {
		return ObjectGeometry{}, false
	}
	return *p.Geometry, true
}

func (c *Catalog) Crane(id ID) (CraneData, bool) {
	p, ok := c.prefabs[id]
	if !ok || p.Crane == nil {
		return CraneData{}, false
	}
	return *p.Crane, true
}

func (c *Catalog) Mesh(id ID) (MeshData, bool) {
	p, ok := c.prefabs[id]
	if !ok || p.Mesh == nil {
		return MeshData{}, false
	}
	return *p.Mesh, true
}

func (c *Catalog) Area(id ID) (AreaData, bool) {
	p, ok := c.prefabs[id]
	if !ok || p.Area == nil {
		return AreaData{}, false
	}
	return *p.Area, true
}

func (c *Catalog) Net(id ID) (NetData, bool) {
	p, ok := c.prefabs[id]
	if !ok || p.Net == nil {
		return NetData{}, false
	}
	return *p.Net, true
}

func (c *Catalog) SubMeshes(id ID) []SubMesh {
	if p, ok := c.prefabs[id]; ok {
		return p.SubMeshes
	}
	return nil
}

func (c *Catalog) SubAreas(id ID) []SubArea {
	if p, ok := c.prefabs[id]; ok {
		return p.SubAreas
	}
	return nil
}

func (c *Catalog) SubAreaNodes(id ID) []SubAreaNode {
	if p, ok := c.prefabs[id]; ok {
		return p.SubAreaNodes
	}
	return nil
}

func (c *Catalog) SubNets(id ID) []SubNet {
	if p, ok := c.prefabs[id]; ok {
		return p.SubNets
	}
	return nil
}

func (c *Catalog) Variants(id ID) []Variant {
	if p, ok := c.prefabs[id]; ok {
		return p.Variants
	}
	return nil
}

// HasColorVariations reports whether any sub-mesh of id renders with colour
// variations.
func (c *Catalog) HasColorVariations(id ID) bool {
	for _, sm := range c.SubMeshes(id) {
		if m, ok := c.Mesh(sm.Mesh); ok && m.ColorVariations > 0 {
			return true
		}
	}
	return false
}
