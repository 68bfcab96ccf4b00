package blocks

// FlatLeaf is one leaf of the flattened sequence.
type FlatLeaf struct {
	Block Block `json:"block"`
	// NewCycle marks the first leaf of every repeat iteration after the
	// first one. Renderers draw a divider before it.
	NewCycle bool `json:"newCycle,omitempty"`
	// Cycle is the iteration index of the innermost enclosing repeat.
	Cycle int `json:"cycle,omitempty"`
	// Depth is the number of enclosing repeat groups.
	Depth int `json:"depth,omitempty"`
}

// Flatten expands every repeat group into Times() consecutive copies of its
// children, recursing into nested groups. Leaves keep their input order and
// are copied unchanged, so a sequence without repeats flattens to itself.
// The flattened view is for display only; use the Total functions for math.
// Expansion stops after MaxFlattenedLeaves leaves.
func Flatten(blocks []Block) []FlatLeaf {
	out := make([]FlatLeaf, 0, min(len(blocks), MaxFlattenedLeaves))
	return flatten(out, blocks, 0)
}

func flatten(out []FlatLeaf, blocks []Block, depth int) []FlatLeaf {
	for _, b := range blocks {
		if len(out) >= MaxFlattenedLeaves {
			return out
		}
		if !b.IsRepeat() {
			out = append(out, FlatLeaf{Block: b, Depth: depth})
			continue
		}
		if !hasLeaf(b.Blocks) {
			continue
		}
		for i := 0; i < b.Times() && len(out) < MaxFlattenedLeaves; i++ {
			start := len(out)
			out = flatten(out, b.Blocks, depth+1)
			for j := start; j < len(out); j++ {
				if out[j].Depth == depth+1 {
					out[j].Cycle = i
				}
			}
			if i > 0 && len(out) > start {
				out[start].NewCycle = true
			}
		}
	}
	return out
}

func hasLeaf(blocks []Block) bool {
	for _, b := range blocks {
		if !b.IsRepeat() || hasLeaf(b.Blocks) {
			return true
		}
	}
	return false
}

// Segment is one bar of the mini workout chart.
type Segment struct {
	FlatLeaf
	// Weight is the relative bar width: the typed duration, or 1 when it
	// is missing or not positive.
	Weight       float64 `json:"weight"`
	DistanceKm   float64 `json:"distanceKm"`
	TimeMin      float64 `json:"timeMin"`
	CumulativeKm float64 `json:"cumulativeKm"`
}

// Profile lays out the flattened workout for rendering, with per-segment
// estimates and the running distance at the end of each segment.
func Profile(blocks []Block) []Segment {
	flat := Flatten(blocks)
	segments := make([]Segment, 0, len(flat))
	cumulative := 0.0
	for _, leaf := range flat {
		l := LeafOf(leaf.Block)
		km := l.DistanceKm()
		cumulative += km
		segments = append(segments, Segment{
			FlatLeaf:     leaf,
			Weight:       barWeight(leaf.Block.Duration),
			DistanceKm:   km,
			TimeMin:      l.TimeMin(),
			CumulativeKm: cumulative,
		})
	}
	return segments
}

func barWeight(m Magnitude) float64 {
	v, ok := m.Float()
	if !ok || v <= 0 {
		return 1
	}
	return v
}
