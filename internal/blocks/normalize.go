package blocks

import "strings"

// Normalize returns a cleaned deep copy of blocks, ready to be stored.
//
//   - string fields are trimmed and the enum fields lower-cased
//     (heartRate keeps its camel case)
//   - distance leaves get an explicit unit, leaves get an explicit intensity type
//   - leaves lose any children; repeat groups lose duration and intensity
//     and get a count of at least one
//
// Unknown types are kept as they are. Normalize never rejects input.
func Normalize(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, normalizeBlock(b))
	}
	return out
}

func normalizeBlock(b Block) Block {
	n := Block{
		Type:        Type(strings.ToLower(strings.TrimSpace(string(b.Type)))),
		Description: strings.TrimSpace(b.Description),
	}

	if n.Type == TypeRepeat {
		n.Repeat = Count(b.Times())
		n.Blocks = Normalize(b.Blocks)
		if n.Blocks == nil {
			n.Blocks = []Block{}
		}
		return n
	}

	n.DurationType = DurationType(strings.ToLower(strings.TrimSpace(string(b.DurationType))))
	n.Duration = Magnitude(strings.TrimSpace(string(b.Duration)))
	n.Intensity = strings.TrimSpace(b.Intensity)
	n.IntensityType = normalizeIntensityType(b.IntensityType)

	if n.DurationType == DurationDistance {
		n.DistanceUnit = DistanceUnit(strings.ToLower(strings.TrimSpace(string(b.DistanceUnit))))
		if n.DistanceUnit == "" {
			n.DistanceUnit = UnitKilometers
		}
	}
	return n
}

func normalizeIntensityType(t IntensityType) IntensityType {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return IntensityNone
	}
	if strings.EqualFold(s, string(IntensityHeartRate)) {
		return IntensityHeartRate
	}
	return IntensityType(strings.ToLower(s))
}
