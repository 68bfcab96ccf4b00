package blocks

// Block sequences are edited as plain ordered slices. The helpers below never
// modify their input; they return a new slice.

// NewLeaf is the block added by "add step".
func NewLeaf() Block {
	return Block{
		Type:          TypeRun,
		DurationType:  DurationDistance,
		DistanceUnit:  UnitKilometers,
		IntensityType: IntensityNone,
	}
}

// NewRepeat is the block added by "add repeat": two rounds of a paced
// kilometer followed by a minute of rest.
func NewRepeat() Block {
	return Block{
		Type:   TypeRepeat,
		Repeat: 2,
		Blocks: []Block{
			{
				Type:          TypeRun,
				DurationType:  DurationDistance,
				Duration:      "1",
				DistanceUnit:  UnitKilometers,
				IntensityType: IntensityPace,
				Intensity:     "5:30",
			},
			{
				Type:          TypeRest,
				DurationType:  DurationTime,
				Duration:      "1",
				IntensityType: IntensityNone,
			},
		},
	}
}

// DefaultWorkoutBlocks is the starting point of a new workout.
func DefaultWorkoutBlocks() []Block {
	return []Block{
		{Type: TypeWarmup, DurationType: DurationDistance, Duration: "1", DistanceUnit: UnitKilometers, IntensityType: IntensityNone},
		{Type: TypeRun, DurationType: DurationDistance, Duration: "2", DistanceUnit: UnitKilometers, IntensityType: IntensityPace, Intensity: "6:00"},
		{Type: TypeCooldown, DurationType: DurationDistance, Duration: "1", DistanceUnit: UnitKilometers, IntensityType: IntensityNone},
	}
}

// Append returns blocks with b added at the end.
func Append(blocks []Block, b Block) []Block {
	out := make([]Block, 0, len(blocks)+1)
	out = append(out, blocks...)
	return append(out, b)
}

// Remove returns blocks without the element at i. An out of range index
// yields an unchanged copy.
func Remove(blocks []Block, i int) []Block {
	out := make([]Block, 0, len(blocks))
	for j, b := range blocks {
		if j != i {
			out = append(out, b)
		}
	}
	return out
}

// Move takes the element at from out of the sequence and reinserts it at to,
// the way a drag-and-drop list does. Out of range indexes yield an unchanged
// copy.
func Move(blocks []Block, from, to int) []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]Block{moved}, out[to:]...)...)
	return out
}
