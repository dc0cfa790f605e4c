package youtube

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cue is one timed caption block of a WebVTT document.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

var cueTagPattern = regexp.MustCompile(`<[^>]*>`)

// ParseVTT parses WebVTT content into cues. Header metadata lines, NOTE and
// STYLE blocks, cue identifiers and cue settings are ignored.
func ParseVTT(content string) ([]Cue, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")

	if !strings.HasPrefix(content, "WEBVTT") {
		return nil, fmt.Errorf("invalid VTT format: missing WEBVTT header")
	}

	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")

		// Optional cue identifier before the timing line.
		timing := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing == -1 || timing+1 >= len(lines) {
			continue
		}

		start, end, err := parseCueTiming(lines[timing])
		if err != nil {
			return nil, err
		}

		var parts []string
		for _, line := range lines[timing+1:] {
			line = strings.TrimSpace(cueTagPattern.ReplaceAllString(line, ""))
			if line != "" {
				parts = append(parts, line)
			}
		}
		if len(parts) == 0 {
			continue
		}

		cues = append(cues, Cue{Start: start, End: end, Text: strings.Join(parts, " ")})
	}

	return cues, nil
}

// TranscriptFromVTT flattens a WebVTT document to plain text. Consecutive
// duplicate cue texts, common in auto-generated captions, are collapsed.
func TranscriptFromVTT(content string) (string, error) {
	cues, err := ParseVTT(content)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	last := ""
	for _, cue := range cues {
		if cue.Text == last {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(cue.Text)
		last = cue.Text
	}
	return sb.String(), nil
}

func parseCueTiming(line string) (time.Duration, time.Duration, error) {
	timestamps := strings.SplitN(line, "-->", 2)
	start, err := parseVTTTimestamp(strings.TrimSpace(timestamps[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start timestamp: %w", err)
	}

	// Cue settings may follow the end timestamp.
	endField := strings.Fields(timestamps[1])
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("invalid end timestamp: missing")
	}
	end, err := parseVTTTimestamp(endField[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end timestamp: %w", err)
	}
	return start, end, nil
}

// parseVTTTimestamp accepts HH:MM:SS.mmm and MM:SS.mmm.
func parseVTTTimestamp(timestamp string) (time.Duration, error) {
	clock, millis, ok := strings.Cut(timestamp, ".")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q: missing milliseconds", timestamp)
	}

	parts := strings.Split(clock, ":")
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q: expected HH:MM:SS.mmm", timestamp)
	}

	var values [4]int
	for i, field := range append(parts, millis) {
		v, err := strconv.Atoi(field)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %w", timestamp, err)
		}
		values[i] = v
	}

	return time.Duration(values[0])*time.Hour +
		time.Duration(values[1])*time.Minute +
		time.Duration(values[2])*time.Second +
		time.Duration(values[3])*time.Millisecond, nil
}
