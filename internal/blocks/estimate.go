package blocks

import (
	"math"
	"strings"
)

// PaceToDecimalMinutes converts a "M:SS" or "MM:SS" pace (minutes per km)
// into decimal minutes, so "6:30" is 6.5. A trailing "/km" is accepted.
// ok is false when the string is not two non-negative numbers separated by
// a colon, or when the pace is zero.
func PaceToDecimalMinutes(pace string) (minutes float64, ok bool) {
	pace = strings.TrimSpace(pace)
	pace = strings.TrimSuffix(strings.TrimSuffix(pace, "/km"), "/KM")

	parts := strings.Split(pace, ":")
	if len(parts) != 2 {
		return 0, false
	}
	mins, ok := parseNumber(parts[0])
	if !ok || mins < 0 {
		return 0, false
	}
	secs, ok := parseNumber(parts[1])
	if !ok || secs < 0 {
		return 0, false
	}

	minutes = mins + secs/60
	if minutes <= 0 {
		return 0, false
	}
	return minutes, true
}

// DistanceKm estimates how far the leaf goes. Distance leaves are converted
// to kilometers; time leaves are divided by the explicit pace or the
// fallback pace. The result is always finite and positive.
func (l Leaf) DistanceKm() float64 {
	switch l.durationType() {
	case DurationDistance:
		km, ok := l.kilometers()
		if !ok {
			return DefaultDistanceKm
		}
		return km
	case DurationTime:
		mins, ok := l.Duration.Float()
		if !ok || mins <= 0 {
			return DefaultDistanceKm
		}
		return mins / l.pace()
	default:
		return DefaultDistanceKm
	}
}

// TimeMin estimates how long the leaf takes in minutes. Time totals may be
// zero; the result is never negative.
func (l Leaf) TimeMin() float64 {
	switch l.durationType() {
	case DurationTime:
		mins, ok := l.Duration.Float()
		if !ok || mins < 0 {
			return DefaultTimeMin
		}
		return mins
	case DurationDistance:
		km, ok := l.kilometers()
		if !ok {
			return DefaultTimeMin
		}
		return km * l.pace()
	default:
		return DefaultTimeMin
	}
}

func (l Leaf) kilometers() (float64, bool) {
	v, ok := l.Duration.Float()
	if !ok || v <= 0 {
		return 0, false
	}
	if strings.EqualFold(strings.TrimSpace(string(l.DistanceUnit)), string(UnitMeters)) {
		v /= metersPerKilometer
	}
	return v, true
}

// durationType reads the field the way Normalize would store it, so raw
// editor input estimates the same as saved blocks.
func (l Leaf) durationType() DurationType {
	return DurationType(strings.ToLower(strings.TrimSpace(string(l.DurationType))))
}

// pace returns the explicit pace when the leaf carries a parseable one.
func (l Leaf) pace() float64 {
	if strings.EqualFold(strings.TrimSpace(string(l.IntensityType)), string(IntensityPace)) && l.Intensity != "" {
		if p, ok := PaceToDecimalMinutes(l.Intensity); ok {
			return p
		}
	}
	return DefaultPaceMinPerKm
}

// EstimateDistanceKm estimates the distance of a single leaf block.
func EstimateDistanceKm(b Block) float64 {
	return LeafOf(b).DistanceKm()
}

// EstimateTimeMin estimates the duration in minutes of a single leaf block.
func EstimateTimeMin(b Block) float64 {
	return LeafOf(b).TimeMin()
}

// TotalDistanceKm walks the unflattened tree and sums leaf distances,
// multiplying nested repeat groups by their counts.
func TotalDistanceKm(blocks []Block) float64 {
	return sum(Tree(blocks), Leaf.DistanceKm)
}

// TotalTimeMin is the time counterpart of TotalDistanceKm.
func TotalTimeMin(blocks []Block) float64 {
	return sum(Tree(blocks), Leaf.TimeMin)
}

// Summary is the headline estimate shown next to a workout.
type Summary struct {
	TotalDistanceKm float64 `json:"totalDistanceKm"`
	TotalTimeMin    float64 `json:"totalTimeMin"`
	LeafCount       int     `json:"leafCount"`
}

// Summarize computes distance and time totals plus the number of leaves the
// flattened view renders. The count is taken from the tree, so it never
// builds the flattened list.
func Summarize(blocks []Block) Summary {
	steps := Tree(blocks)
	return Summary{
		TotalDistanceKm: sum(steps, Leaf.DistanceKm),
		TotalTimeMin:    sum(steps, Leaf.TimeMin),
		LeafCount:       min(countLeaves(steps, MaxFlattenedLeaves), MaxFlattenedLeaves),
	}
}

func isNonFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
