package dataset

import (
	"marketset/internal/errors"
)

// ValidateColumns checks that columns contains every required column. When
// strict is true it also rejects any column outside the required set. Pure
// check, no side effects; offending column names are reported sorted so
// messages are deterministic.
func ValidateColumns(columns, required []string, strict bool) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	var missing []string
	requiredSet := make(map[string]bool, len(required))
	for _, c := range required {
		requiredSet[c] = true
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingColumnsError(missing)
	}

	if strict {
		var extra []string
		for _, c := range columns {
			if !requiredSet[c] {
				extra = append(extra, c)
			}
		}
		if len(extra) > 0 {
			return errors.NewExtraColumnsError(extra)
		}
	}

	return nil
}
