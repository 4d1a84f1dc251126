// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tasks segments extracted text into numbered exercises and pairs the
// full-text and core-text segmentations into ordered task records.
package tasks

import (
	"regexp"
	"strings"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

// headingPattern matches numbered exercise headings such as "1." or "12)"
// followed by whitespace.
var headingPattern = regexp.MustCompile(`^\s*\d+[.)]\s`)

// IsHeading reports whether line opens a numbered exercise.
func IsHeading(line string) bool {
	return headingPattern.MatchString(line)
}

// Split divides text into one unit per numbered heading. Text before the
// first heading stays in the first unit. Units are returned trimmed; blank
// units are never returned.
func Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var units []string
	var current strings.Builder
	hasHeading := false

	flush := func() {
		if unit := strings.TrimSpace(current.String()); unit != "" {
			units = append(units, unit)
		}
		current.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if IsHeading(line) {
			if hasHeading && strings.TrimSpace(current.String()) != "" {
				flush()
				current.WriteString(line)
				continue
			}
			hasHeading = true
		}
		current.WriteString("\n")
		current.WriteString(line)
	}

	flush()
	return units
}

// Pair builds task records from two independently segmented sequences by
// position. Record i gets index i+1; a side that is shorter contributes an
// empty string. Records with both sides blank are dropped.
func Pair(fullUnits, coreUnits []string) []types.TaskRecord {
	n := max(len(fullUnits), len(coreUnits))

	records := make([]types.TaskRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := types.TaskRecord{Index: i + 1}
		if i < len(fullUnits) {
			rec.FullText = fullUnits[i]
		}
		if i < len(coreUnits) {
			rec.CoreText = coreUnits[i]
		}
		if strings.TrimSpace(rec.FullText) == "" && strings.TrimSpace(rec.CoreText) == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// Parse segments both texts of an extraction result and pairs them.
func Parse(result types.ExtractionResult) []types.TaskRecord {
	return Pair(Split(result.FullText), Split(result.CoreText))
}
