package textutil

import "strings"

// NormalizeTags trims each tag, drops empties, removes case-insensitive
// duplicates while preserving first-seen order, and caps the result at max
// entries (unlimited when max <= 0).
func NormalizeTags(tags []string, max int) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
		if max > 0 && len(out) >= max {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// PrependTag returns tags with lead at the front, inserting it only when it
// is not already present (case-insensitive).
func PrependTag(lead string, tags []string) []string {
	lead = strings.TrimSpace(lead)
	if lead == "" {
		return tags
	}
	for _, tag := range tags {
		if strings.EqualFold(strings.TrimSpace(tag), lead) {
			return tags
		}
	}
	return append([]string{lead}, tags...)
}
