// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tasks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"1. Ein Schiff", true},
		{"2) Ein Zug", true},
		{"   12. indented", true},
		{"\t3.\tTabbed", true},
		{"1.5 kg Mehl", false},
		{"a) sub-task", false},
		{"1.", false},
		{"Aufgabe 1. Text", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHeading(tt.line))
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "  \n\t\n",
			want: nil,
		},
		{
			name: "preamble kept in first unit",
			text: "intro\n1. a\n2. b",
			want: []string{"intro\n1. a", "2. b"},
		},
		{
			name: "continuation lines stay with their heading",
			text: "1. Ein Schiff hat 15 Mann.\nWie lange reicht der Vorrat?\n2) 3 Äpfel kosten je 2€.",
			want: []string{"1. Ein Schiff hat 15 Mann.\nWie lange reicht der Vorrat?", "2) 3 Äpfel kosten je 2€."},
		},
		{
			name: "no headings at all",
			text: "just some text\nwithout numbers",
			want: []string{"just some text\nwithout numbers"},
		},
		{
			name: "sub-items with letters do not split",
			text: "1. Rechne:\na) 3 + 4\nb) 5 × 6\n2. Rechne 7 ÷ 7",
			want: []string{"1. Rechne:\na) 3 + 4\nb) 5 × 6", "2. Rechne 7 ÷ 7"},
		},
		{
			name: "blank lines between units are trimmed",
			text: "\n\n1. x\n\n\n2. y\n\n",
			want: []string{"1. x", "2. y"},
		},
		{
			name: "indented headings",
			text: "  1. x\n  2. y",
			want: []string{"1. x", "2. y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.text))
		})
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	units := []string{"1. x\n", "2. y\n"}
	got := Split(strings.Join(units, "\n"))

	want := make([]string, len(units))
	for i, u := range units {
		want[i] = strings.TrimSpace(u)
	}
	assert.Equal(t, want, got)
}

func TestPair(t *testing.T) {
	tests := []struct {
		name string
		full []string
		core []string
		want []types.TaskRecord
	}{
		{
			name: "both empty",
			want: []types.TaskRecord{},
		},
		{
			name: "core shorter than full",
			full: []string{"1. A", "2. B"},
			core: []string{"1.x"},
			want: []types.TaskRecord{
				{Index: 1, FullText: "1. A", CoreText: "1.x"},
				{Index: 2, FullText: "2. B", CoreText: ""},
			},
		},
		{
			name: "full shorter than core",
			full: []string{"1. A"},
			core: []string{"1. 3 × 2 = ?", "2. 100 ÷ 2 = ?"},
			want: []types.TaskRecord{
				{Index: 1, FullText: "1. A", CoreText: "1. 3 × 2 = ?"},
				{Index: 2, FullText: "", CoreText: "2. 100 ÷ 2 = ?"},
			},
		},
		{
			name: "blank pairs dropped",
			full: []string{"1. A", "  ", "3. C"},
			core: []string{"1. a", "\n", "3. c"},
			want: []types.TaskRecord{
				{Index: 1, FullText: "1. A", CoreText: "1. a"},
				{Index: 3, FullText: "3. C", CoreText: "3. c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pair(tt.full, tt.core))
		})
	}
}

func TestPair_Deterministic(t *testing.T) {
	full := []string{"1. A", "2. B", "3. C"}
	core := []string{"1. a", "2. b"}

	first := Pair(full, core)
	second := Pair(full, core)
	assert.Equal(t, first, second)
}

func TestParse(t *testing.T) {
	result := types.ExtractionResult{
		FullText: "Seite 1\n1. Ein Schiff mit 15 Mann hat Vorrat für 40 Tage.\n2. 25% von 80.",
		CoreText: "1. (15 × 40) ÷ 8 = ?\n2. 80 × 0,25 = ?",
	}

	got := Parse(result)
	assert.Equal(t, []types.TaskRecord{
		{Index: 1, FullText: "Seite 1\n1. Ein Schiff mit 15 Mann hat Vorrat für 40 Tage.", CoreText: "1. (15 × 40) ÷ 8 = ?"},
		{Index: 2, FullText: "2. 25% von 80.", CoreText: "2. 80 × 0,25 = ?"},
	}, got)
}
