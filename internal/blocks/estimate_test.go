package blocks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaceToDecimalMinutes(t *testing.T) {
	tests := []struct {
		pace   string
		want   float64
		wantOK bool
	}{
		{pace: "6:30", want: 6.5, wantOK: true},
		{pace: "5:00", want: 5, wantOK: true},
		{pace: "10:15", want: 10.25, wantOK: true},
		{pace: " 4:45 ", want: 4.75, wantOK: true},
		{pace: "5:00/km", want: 5, wantOK: true},
		{pace: "bad"},
		{pace: ""},
		{pace: "6"},
		{pace: "6:"},
		{pace: ":30"},
		{pace: "1:2:3"},
		{pace: "-1:30"},
		{pace: "5:-10"},
		{pace: "0:00"},
		{pace: "a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.pace, func(t *testing.T) {
			got, ok := PaceToDecimalMinutes(tt.pace)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEstimateDistanceKm(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  float64
	}{
		{
			name:  "kilometers",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "2.5"},
			want:  2.5,
		},
		{
			name:  "meters converted",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "1000", DistanceUnit: UnitMeters},
			want:  1,
		},
		{
			name:  "400 meters",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "400", DistanceUnit: UnitMeters},
			want:  0.4,
		},
		{
			name:  "unparsable distance",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "abc"},
			want:  DefaultDistanceKm,
		},
		{
			name:  "zero distance",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "0"},
			want:  DefaultDistanceKm,
		},
		{
			name:  "negative distance",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "-3"},
			want:  DefaultDistanceKm,
		},
		{
			name:  "time with fallback pace",
			block: Block{Type: TypeRun, DurationType: DurationTime, Duration: "30"},
			want:  5,
		},
		{
			name:  "time with explicit pace",
			block: Block{Type: TypeRun, DurationType: DurationTime, Duration: "25", IntensityType: IntensityPace, Intensity: "5:00"},
			want:  5,
		},
		{
			name:  "time with broken pace",
			block: Block{Type: TypeRun, DurationType: DurationTime, Duration: "30", IntensityType: IntensityPace, Intensity: "fast"},
			want:  5,
		},
		{
			name:  "pace ignored for heart rate intensity",
			block: Block{Type: TypeRun, DurationType: DurationTime, Duration: "30", IntensityType: IntensityHeartRate, Intensity: "3:00"},
			want:  5,
		},
		{
			name:  "unparsable time",
			block: Block{Type: TypeRest, DurationType: DurationTime, Duration: "abc"},
			want:  DefaultDistanceKm,
		},
		{
			name:  "missing duration type",
			block: Block{Type: TypeRun, Duration: "7"},
			want:  DefaultDistanceKm,
		},
		{
			name:  "unnormalized casing",
			block: Block{Type: "Run", DurationType: "Distance", Duration: "500", DistanceUnit: " M "},
			want:  0.5,
		},
		{
			name:  "unknown type is a generic leaf",
			block: Block{Type: "strides", DurationType: DurationDistance, Duration: "0.5"},
			want:  0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateDistanceKm(tt.block)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Greater(t, got, 0.0)
		})
	}
}

func TestEstimateTimeMin(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  float64
	}{
		{
			name:  "time",
			block: Block{Type: TypeRest, DurationType: DurationTime, Duration: "1.5"},
			want:  1.5,
		},
		{
			name:  "distance with explicit pace",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "2", IntensityType: IntensityPace, Intensity: "5:00"},
			want:  10,
		},
		{
			name:  "distance with fallback pace",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "3"},
			want:  18,
		},
		{
			name:  "meters with pace",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "800", DistanceUnit: UnitMeters, IntensityType: IntensityPace, Intensity: "4:00"},
			want:  3.2,
		},
		{
			name:  "unparsable time",
			block: Block{Type: TypeRest, DurationType: DurationTime, Duration: "abc"},
			want:  DefaultTimeMin,
		},
		{
			name:  "unparsable distance",
			block: Block{Type: TypeRun, DurationType: DurationDistance, Duration: "abc"},
			want:  DefaultTimeMin,
		},
		{
			name:  "negative time",
			block: Block{Type: TypeRest, DurationType: DurationTime, Duration: "-4"},
			want:  DefaultTimeMin,
		},
		{
			name:  "missing duration type",
			block: Block{Type: TypeRun, Duration: "7"},
			want:  DefaultTimeMin,
		},
		{
			name:  "unnormalized casing",
			block: Block{Type: TypeRun, DurationType: " DISTANCE", Duration: "2", IntensityType: "Pace", Intensity: "5:00"},
			want:  10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EstimateTimeMin(tt.block), 1e-9)
		})
	}
}

func TestTotals_ScaleWithRepeat(t *testing.T) {
	leaves := []Block{
		{Type: TypeRun, DurationType: DurationDistance, Duration: "1.2"},
		{Type: TypeRest, DurationType: DurationTime, Duration: "2"},
		{Type: TypeRun, DurationType: DurationTime, Duration: "12", IntensityType: IntensityPace, Intensity: "4:00"},
	}
	for _, leaf := range leaves {
		repeated := []Block{{Type: TypeRepeat, Repeat: 3, Blocks: []Block{leaf}}}
		assert.InDelta(t, 3*TotalDistanceKm([]Block{leaf}), TotalDistanceKm(repeated), 1e-9)
		assert.InDelta(t, 3*TotalTimeMin([]Block{leaf}), TotalTimeMin(repeated), 1e-9)
	}
}

func TestTotals_NestedRepeatsMultiply(t *testing.T) {
	blocks := []Block{
		{
			Type:   TypeRepeat,
			Repeat: 2,
			Blocks: []Block{
				{Type: TypeRun, DurationType: DurationDistance, Duration: "1"},
				{
					Type:   TypeRepeat,
					Repeat: 3,
					Blocks: []Block{
						{Type: TypeRun, DurationType: DurationDistance, Duration: "200", DistanceUnit: UnitMeters, IntensityType: IntensityPace, Intensity: "3:00"},
					},
				},
			},
		},
	}

	assert.InDelta(t, 2*(1+3*0.2), TotalDistanceKm(blocks), 1e-9)
	assert.InDelta(t, 2*(6+3*0.6), TotalTimeMin(blocks), 1e-9)
}

func TestTotals_DegenerateRepeats(t *testing.T) {
	leaf := Block{Type: TypeRun, DurationType: DurationDistance, Duration: "2"}

	t.Run("missing count is once", func(t *testing.T) {
		blocks := []Block{{Type: TypeRepeat, Blocks: []Block{leaf}}}
		assert.InDelta(t, 2.0, TotalDistanceKm(blocks), 1e-9)
	})
	t.Run("negative count is once", func(t *testing.T) {
		blocks := []Block{{Type: TypeRepeat, Repeat: -4, Blocks: []Block{leaf}}}
		assert.InDelta(t, 2.0, TotalDistanceKm(blocks), 1e-9)
	})
	t.Run("no children contributes nothing", func(t *testing.T) {
		blocks := []Block{{Type: TypeRepeat, Repeat: 5}}
		assert.Zero(t, TotalDistanceKm(blocks))
		assert.Zero(t, TotalTimeMin(blocks))
	})
	t.Run("repeat duration is ignored", func(t *testing.T) {
		blocks := []Block{{Type: TypeRepeat, Repeat: 2, DurationType: DurationDistance, Duration: "50", Blocks: []Block{leaf}}}
		assert.InDelta(t, 4.0, TotalDistanceKm(blocks), 1e-9)
	})
	t.Run("empty input", func(t *testing.T) {
		assert.Zero(t, TotalDistanceKm(nil))
		assert.Zero(t, TotalTimeMin([]Block{}))
	})
}

func TestSummarize_EndToEnd(t *testing.T) {
	blocks := []Block{
		{Type: TypeWarmup, DurationType: DurationDistance, Duration: "1"},
		{
			Type:   TypeRepeat,
			Repeat: 2,
			Blocks: []Block{
				{Type: TypeRun, DurationType: DurationDistance, Duration: "1"},
				{Type: TypeRest, DurationType: DurationTime, Duration: "1"},
			},
		},
		{Type: TypeCooldown, DurationType: DurationDistance, Duration: "1"},
	}

	s := Summarize(blocks)
	assert.InDelta(t, 1+2*(1+1.0/6)+1, s.TotalDistanceKm, 1e-9)
	assert.InDelta(t, 4.333, s.TotalDistanceKm, 1e-3)
	assert.InDelta(t, 6+2*(6+1)+6, s.TotalTimeMin, 1e-9)
	assert.Equal(t, 6, s.LeafCount)
	assert.Len(t, Flatten(blocks), 6)
}

func TestBlock_DecodesLooseJSON(t *testing.T) {
	payload := `[
		{"type": "repeat", "repeat": "3", "blocks": [
			{"type": "run", "durationType": "distance", "duration": 400, "distanceUnit": "m"},
			{"type": "rest", "durationType": "time", "duration": "1.5"}
		]},
		{"type": "repeat", "repeat": "lots", "blocks": null},
		{"type": "run", "durationType": "time", "duration": null}
	]`

	var blocks []Block
	require.NoError(t, json.Unmarshal([]byte(payload), &blocks))
	require.Len(t, blocks, 3)

	assert.Equal(t, Count(3), blocks[0].Repeat)
	assert.Equal(t, Magnitude("400"), blocks[0].Blocks[0].Duration)
	assert.Equal(t, Magnitude("1.5"), blocks[0].Blocks[1].Duration)
	assert.Equal(t, Count(0), blocks[1].Repeat)
	assert.Equal(t, 1, blocks[1].Times())
	assert.Equal(t, Magnitude(""), blocks[2].Duration)

	assert.InDelta(t, 3*(0.4+0.25)+1, TotalDistanceKm(blocks), 1e-9)
}
