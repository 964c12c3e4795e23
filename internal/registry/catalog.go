package registry

import "strings"

// Catalog renders the operations of one kind, one per line, in the form
// the text generator is shown:
//
//	filter_by_city(city: str) - Candidates living in the given city
func Catalog(reg *Registry, kind Kind) string {
	var b strings.Builder
	for _, sig := range reg.order[kind] {
		b.WriteString(sig.String())
		if sig.Description != "" {
			b.WriteString(" - ")
			b.WriteString(strings.Join(strings.Fields(sig.Description), " "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
