package prefab

// FirstNodeIndex returns the index inside r where a polygon walk starts:
// the node with the lowest local Z, ties broken by the lowest X. Placing the
// same placeholder twice therefore yields identical node order.
func FirstNodeIndex(nodes []SubAreaNode, r NodeRange) int {
	first := r.Start
	for i := r.Start + 1; i < r.End && i < len(nodes); i++ {
		a, b := nodes[i].Position, nodes[first].Position
		if a.Z < b.Z || (a.Z == b.Z && a.X < b.X) {
			first = i
		}
	}
	return first
}

// SubNetAt returns the index-th sub-net of nets as it should be built. With
// left-hand traffic an asymmetric net is mirrored: the curve is reversed, its
// end attributes swap and the side upgrades trade places.
func (c *Catalog) SubNetAt(nets []SubNet, index int, leftHand bool) SubNet {
	sn := nets[index]
	if !leftHand {
		return sn
	}
	if n, ok := c.Net(sn.Prefab); !ok || !n.Asymmetric {
		return sn
	}
	sn.Curve = sn.Curve.Invert()
	sn.NodeIndex = [2]int{sn.NodeIndex[1], sn.NodeIndex[0]}
	sn.ParentMesh = [2]int{sn.ParentMesh[1], sn.ParentMesh[0]}
	sn.Upgrades = sn.Upgrades.Mirrored()
	return sn
}
