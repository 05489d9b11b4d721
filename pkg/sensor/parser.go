package sensor

import (
	"strconv"
	"strings"
)

const (
	fieldCount = 5
	fsrMax     = 1023
)

// ParseLine converts one device line (terminators already stripped) into a
// Reading. The expected shape is five numeric tokens, comma- or
// whitespace-delimited: force, deltaForce, fsr1, fsr2, fsr3. Elapsed is
// left zero for the caller to stamp.
//
// The second return is false for anything else: empty lines, banners and
// echoes from the firmware, wrong token counts, tokens that fail numeric
// conversion, or FSR counts outside the device's 10-bit range. A failed
// parse is normal traffic, not an error.
func ParseLine(line string) (Reading, bool) {
	tokens, ok := tokenize(line)
	if !ok || len(tokens) != fieldCount {
		return Reading{}, false
	}

	force, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return Reading{}, false
	}
	delta, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Reading{}, false
	}

	var fsr [3]int
	for i, tok := range tokens[2:] {
		v, err := strconv.Atoi(tok)
		if err != nil || v < 0 || v > fsrMax {
			return Reading{}, false
		}
		fsr[i] = v
	}

	return Reading{
		Force:      force,
		DeltaForce: delta,
		FSR1:       fsr[0],
		FSR2:       fsr[1],
		FSR3:       fsr[2],
	}, true
}

// tokenize splits a device line into fields. Comma-delimited lines keep
// every field, so an empty field (as in "1,,2,3,4,5") counts toward the
// token total and fails conversion instead of being collapsed away.
// Lines without commas split on whitespace.
func tokenize(line string) ([]string, bool) {
	if !strings.Contains(line, ",") {
		return strings.Fields(line), true
	}
	parts := strings.Split(line, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, false
		}
		parts[i] = p
	}
	return parts, true
}
