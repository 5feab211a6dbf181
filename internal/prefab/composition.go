package prefab

import (
	"fmt"
	"slices"
)

// CompositionFlags describe net upgrades. General bits apply to the whole
// segment, Left and Right to one side relative to the curve direction.
type CompositionFlags struct {
	General uint32
	Left    uint32
	Right   uint32
}

const (
	UpgradeLighting uint32 = 1 << iota
	UpgradeTrees
	UpgradeGrass
	UpgradeSidewalk
	UpgradeWideSidewalk
	UpgradeSoundBarrier
	UpgradeCrosswalk
)

var upgradeNames = map[string]uint32{
	"lighting":      UpgradeLighting,
	"trees":         UpgradeTrees,
	"grass":         UpgradeGrass,
	"sidewalk":      UpgradeSidewalk,
	"wide_sidewalk": UpgradeWideSidewalk,
	"sound_barrier": UpgradeSoundBarrier,
	"crosswalk":     UpgradeCrosswalk,
}

// IsZero reports whether no upgrade bit is set.
func (c CompositionFlags) IsZero() bool {
	return c.General == 0 && c.Left == 0 && c.Right == 0
}

// Mirrored swaps the side-specific bits.
func (c CompositionFlags) Mirrored() CompositionFlags {
	return CompositionFlags{General: c.General, Left: c.Right, Right: c.Left}
}

// UpgradeNames lists the names of the bits set in mask, sorted.
func UpgradeNames(mask uint32) []string {
	var out []string
	for name, bit := range upgradeNames {
		if mask&bit != 0 {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func parseUpgrades(names []string) (uint32, error) {
	var mask uint32
	for _, n := range names {
		bit, ok := upgradeNames[n]
		if !ok {
			return 0, fmt.Errorf("unknown upgrade %q", n)
		}
		mask |= bit
	}
	return mask, nil
}
