package core

// Catalog lookups. Every reporting endpoint decorates a primary list of store
// rows with human-readable fields pulled from referenced catalog tables; the
// helpers below implement that keyed join once instead of one hand-rolled
// loop per entity.

// UnknownName is the sentinel used when a referenced id has no catalog match.
// The feminine variant covers catalogs whose noun is feminine in the wire
// vocabulary (asignatura, seccion).
const (
	UnknownName  = "Desconocido"
	UnknownNameF = "Desconocida"
)

// MapBy builds an id-indexed lookup for a catalog slice.
func MapBy[K comparable, T any](items []T, key func(T) K) map[K]T {
	m := make(map[K]T, len(items))
	for _, it := range items {
		m[key(it)] = it
	}
	return m
}

// JoinName returns a display field of the catalog entry referenced by id, or
// the fallback sentinel when the id has no match.
func JoinName[K comparable, T any](catalog map[K]T, id K, name func(T) string, fallback string) string {
	if it, ok := catalog[id]; ok {
		return name(it)
	}
	return fallback
}

// Decorate applies copy to every primary record, handing it the referenced
// catalog entry (ok reports whether the reference resolved). primaries is
// decorated in place.
func Decorate[P any, K comparable, C any](primaries []P, fk func(P) K, catalog map[K]C, copy func(p *P, c C, ok bool)) {
	for i := range primaries {
		c, ok := catalog[fk(primaries[i])]
		copy(&primaries[i], c, ok)
	}
}
