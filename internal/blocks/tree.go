package blocks

// Step is a node of the typed workout tree: either a Leaf or a Repeat.
// Converting records with Tree makes it impossible to read a duration off a
// repeat group, which the flat Block record allows.
type Step interface {
	step()
}

// Leaf is a single warm-up, run, rest or cool-down segment. Blocks with an
// unrecognised type are leaves too.
type Leaf struct {
	Kind          Type
	Description   string
	DurationType  DurationType
	Duration      Magnitude
	DistanceUnit  DistanceUnit
	IntensityType IntensityType
	Intensity     string
}

// Repeat runs Steps Times times in order.
type Repeat struct {
	Times int
	Steps []Step
}

func (Leaf) step()   {}
func (Repeat) step() {}

// Tree converts stored blocks into the typed tree, recursing into nested
// repeat groups. A repeat with no children becomes a Repeat with no steps.
func Tree(blocks []Block) []Step {
	steps := make([]Step, 0, len(blocks))
	for _, b := range blocks {
		if b.IsRepeat() {
			steps = append(steps, Repeat{Times: b.Times(), Steps: Tree(b.Blocks)})
			continue
		}
		steps = append(steps, LeafOf(b))
	}
	return steps
}

// LeafOf returns the leaf view of b. Children are dropped.
func LeafOf(b Block) Leaf {
	return Leaf{
		Kind:          b.Type,
		Description:   b.Description,
		DurationType:  b.DurationType,
		Duration:      b.Duration,
		DistanceUnit:  b.DistanceUnit,
		IntensityType: b.IntensityType,
		Intensity:     b.Intensity,
	}
}

// sum folds metric over steps, multiplying every repeat group by its count.
func sum(steps []Step, metric func(Leaf) float64) float64 {
	total := 0.0
	for _, s := range steps {
		switch s := s.(type) {
		case Leaf:
			total += metric(s)
		case Repeat:
			total += float64(s.Times) * sum(s.Steps, metric)
		}
	}
	return total
}

// countLeaves counts the leaves the flattened view would hold. It stops
// counting once the total passes limit and then returns limit+1.
func countLeaves(steps []Step, limit int) int {
	n := 0
	for _, s := range steps {
		switch s := s.(type) {
		case Leaf:
			n++
		case Repeat:
			inner := countLeaves(s.Steps, limit)
			if inner > 0 && s.Times > (limit-n)/inner {
				return limit + 1
			}
			n += s.Times * inner
		}
		if n > limit {
			return limit + 1
		}
	}
	return n
}
