// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quotapreferential

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// decisionLog accumulates a narration of every material choice the count
// makes. Lines may reference candidates via $C<i> (a single candidate) or
// $C[i,j,...] (a list), expanded against the candidate names at render time
// so the log never needs the name table while the count is running.
type decisionLog struct {
	lines []string
}

func (d *decisionLog) add(format string, args ...any) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

var (
	reCandidateList = regexp.MustCompile(`\$C\[([0-9,\s]+)\]`)
	reCandidateOne  = regexp.MustCompile(`\$C(\d+)`)
)

func renderPlaceholders(line string, names []string) string {
	line = reCandidateList.ReplaceAllStringFunc(line, func(m string) string {
		sub := reCandidateList.FindStringSubmatch(m)
		parts := strings.Split(sub[1], ",")
		rendered := make([]string, 0, len(parts))
		for _, p := range parts {
			idx, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || idx < 0 || idx >= len(names) {
				continue
			}
			rendered = append(rendered, names[idx])
		}
		return strings.Join(rendered, ", ")
	})
	line = reCandidateOne.ReplaceAllStringFunc(line, func(m string) string {
		sub := reCandidateOne.FindStringSubmatch(m)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(names) {
			return m
		}
		return names[idx]
	})
	return line
}

// render expands every placeholder in the log against the given candidate
// names, returning the human-readable decision log for the result.
func (d *decisionLog) render(names []string) []string {
	out := make([]string, len(d.lines))
	for i, line := range d.lines {
		out[i] = renderPlaceholders(line, names)
	}
	return out
}

func cList(candidates []int) string {
	strs := make([]string, len(candidates))
	for i, c := range candidates {
		strs[i] = strconv.Itoa(c)
	}
	return "$C[" + strings.Join(strs, ",") + "]"
}

func c1(candidate int) string {
	return "$C" + strconv.Itoa(candidate)
}
