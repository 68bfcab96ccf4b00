// Package blocks models the step tree of a structured running workout and
// derives the views the rest of the application needs from it: a flattened
// leaf sequence for rendering and distance/time estimates for totals.
//
// Every function in this package is total. Malformed numbers, unknown block
// types and empty repeat groups are folded into documented defaults instead
// of errors, because workouts are routinely saved as half-finished drafts.
// The one exception is CheckSize, which write paths call to refuse trees
// that expand past MaxFlattenedLeaves.
package blocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Type is the kind of a block.
type Type string

const (
	TypeWarmup   Type = "warmup"
	TypeRun      Type = "run"
	TypeRest     Type = "rest"
	TypeCooldown Type = "cooldown"
	TypeRepeat   Type = "repeat"
)

// DurationType says how a leaf's Duration is measured.
type DurationType string

const (
	DurationDistance DurationType = "distance"
	DurationTime     DurationType = "time"
)

// DistanceUnit applies to distance leaves only. Empty means kilometers.
type DistanceUnit string

const (
	UnitKilometers DistanceUnit = "km"
	UnitMeters     DistanceUnit = "m"
)

// IntensityType qualifies the free-form Intensity payload.
type IntensityType string

const (
	IntensityNone      IntensityType = "none"
	IntensityPace      IntensityType = "pace"
	IntensityHeartRate IntensityType = "heartRate"
	IntensitySpeed     IntensityType = "speed"
)

// Estimation defaults. Distance falls back to a visible 1 km so bar segments
// never collapse; time totals are allowed to be zero.
const (
	DefaultDistanceKm   = 1.0
	DefaultTimeMin      = 0.0
	DefaultPaceMinPerKm = 6.0
	DefaultRepeatCount  = 1
	metersPerKilometer  = 1000.0
)

// Size limits. Repeat counts above MaxRepeatCount are read as
// MaxRepeatCount; a tree whose flattened view would hold more than
// MaxFlattenedLeaves leaves is refused by CheckSize and truncated by Flatten.
const (
	MaxRepeatCount     = 100
	MaxFlattenedLeaves = 2000
)

var ErrTooManyLeaves = errors.New("workout expands to too many steps")

// Block is one node of a workout as it is stored and sent over the wire.
// Repeat blocks carry their content in Blocks; every other type is a leaf
// and ignores Blocks.
type Block struct {
	Type          Type          `bson:"type" json:"type"`
	Description   string        `bson:"description,omitempty" json:"description,omitempty"`
	DurationType  DurationType  `bson:"durationType,omitempty" json:"durationType,omitempty"`
	Duration      Magnitude     `bson:"duration,omitempty" json:"duration,omitempty"`
	DistanceUnit  DistanceUnit  `bson:"distanceUnit,omitempty" json:"distanceUnit,omitempty"`
	IntensityType IntensityType `bson:"intensityType,omitempty" json:"intensityType,omitempty"`
	Intensity     string        `bson:"intensity,omitempty" json:"intensity,omitempty"`
	Repeat        Count         `bson:"repeat,omitempty" json:"repeat,omitempty"`
	Blocks        []Block       `bson:"blocks,omitempty" json:"blocks,omitempty"`
}

// IsRepeat reports whether b is a repeat group.
func (b Block) IsRepeat() bool {
	return strings.EqualFold(strings.TrimSpace(string(b.Type)), string(TypeRepeat))
}

// Times returns how often a repeat group runs. Missing or non-positive
// counts mean once; counts are capped at MaxRepeatCount.
func (b Block) Times() int {
	switch {
	case b.Repeat < 1:
		return DefaultRepeatCount
	case b.Repeat > MaxRepeatCount:
		return MaxRepeatCount
	}
	return int(b.Repeat)
}

// CheckSize returns ErrTooManyLeaves when blocks would flatten to more than
// MaxFlattenedLeaves leaves.
func CheckSize(blocks []Block) error {
	if n := countLeaves(Tree(blocks), MaxFlattenedLeaves); n > MaxFlattenedLeaves {
		return fmt.Errorf("%w: more than %d after expanding repeats", ErrTooManyLeaves, MaxFlattenedLeaves)
	}
	return nil
}

// Magnitude is a numeric value kept as the string the author typed.
// Editors send it either as a JSON string or as a bare number.
type Magnitude string

func (m *Magnitude) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Magnitude(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = Magnitude(n.String())
	return nil
}

// Float parses the magnitude. ok is false for empty, non-numeric and
// non-finite input.
func (m Magnitude) Float() (v float64, ok bool) {
	return parseNumber(string(m))
}

// Count is a repeat count. Form inputs post it as a string, so both "3" and 3
// decode; anything unparsable decodes to zero and is later read as one.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	f, ok := parseNumber(raw)
	// float to int conversion is undefined past the int range
	switch {
	case !ok || f < 1:
		*c = 0
	case f > MaxRepeatCount:
		*c = MaxRepeatCount
	default:
		*c = Count(int(f))
	}
	return nil
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || isNonFinite(f) {
		return 0, false
	}
	return f, true
}
