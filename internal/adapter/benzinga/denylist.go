package benzinga

import "strings"

// Denylist matches routine corporate-action phrases. Matching is a
// case-insensitive substring test.
type Denylist struct {
	phrases []string
}

func NewDenylist(phrases []string) *Denylist {
	d := &Denylist{phrases: make([]string, 0, len(phrases))}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			d.phrases = append(d.phrases, p)
		}
	}
	return d
}

// Matches reports whether any field contains a denylisted phrase.
func (d *Denylist) Matches(fields ...string) bool {
	if d == nil {
		return false
	}
	for _, field := range fields {
		lower := strings.ToLower(field)
		for _, p := range d.phrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
	}
	return false
}
