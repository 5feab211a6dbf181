package prefab

import "github.com/urbanforge/buildsim/internal/core/rng"

// Selection is a resolved placeholder variant.
type Selection struct {
	Index int
	Seed  int32
}

// VariantCache remembers which variant each randomization group resolved to.
// A cache lives for one prefab transition and is then discarded.
type VariantCache map[int]Selection

// Clear empties the cache for reuse.
func (c VariantCache) Clear() {
	for k := range c {
		delete(c, k)
	}
}

// SelectAreaPrefab resolves placeholder to one of its area variants with a
// weighted draw. Variants that are unknown, carry no area data or have zero
// weight are never chosen. When cache is non-nil and the placeholder belongs
// to a randomization group, earlier selections for that group are reused.
// The returned seed is handed to the created entity.
func (c *Catalog) SelectAreaPrefab(placeholder ID, cache VariantCache, r *rng.Random) (ID, int32, bool) {
	p, ok := c.prefabs[placeholder]
	if !ok || len(p.Variants) == 0 {
		return "", 0, false
	}
	group := p.RandomizationGroup
	if cache != nil && group != 0 {
		if sel, hit := cache[group]; hit && sel.Index < len(p.Variants) {
			if v := p.Variants[sel.Index]; c.isArea(v.Object) && v.Probability > 0 {
				return v.Object, sel.Seed, true
			}
		}
	}
	chosen := -1
	total := 0
	for i, v := range p.Variants {
		if v.Probability <= 0 || !c.isArea(v.Object) {
			continue
		}
		total += v.Probability
		if r.NextIntN(total) < v.Probability {
			chosen = i
		}
	}
	if chosen < 0 {
		return "", 0, false
	}
	seed := r.NextInt()
	if cache != nil && group != 0 {
		cache[group] = Selection{Index: chosen, Seed: seed}
	}
	return p.Variants[chosen].Object, seed, true
}

func (c *Catalog) isArea(id ID) bool {
	p, ok := c.prefabs[id]
	return ok && p.Area != nil
}
