// Package routeerr defines the sentinel error kinds shared across the
// ingest, graph, geocode, and routing packages, checked with errors.Is by
// callers such as cmd/server's HTTP status mapping.
package routeerr

import "errors"

var (
	// ErrIngestFailure means every Overpass endpoint was unreachable.
	ErrIngestFailure = errors.New("routeerr: all OSM ingest endpoints failed")

	// ErrEmptyGraph means the largest strongly connected component is empty.
	ErrEmptyGraph = errors.New("routeerr: graph is empty after LSCC filtering")

	// ErrUnknownEndpoint means a supplied node ID does not exist in the graph.
	ErrUnknownEndpoint = errors.New("routeerr: unknown node id")

	// ErrSnapFailure means the KD-Tree returned nothing (the index is empty).
	ErrSnapFailure = errors.New("routeerr: failed to snap point to graph")

	// ErrGeocodeMiss means the address search found nothing.
	ErrGeocodeMiss = errors.New("routeerr: no address match")

	// ErrSameEndpoint means origin and destination resolved to the same node.
	ErrSameEndpoint = errors.New("routeerr: origin and destination are the same node")

	// ErrNoPath means A* exhausted its frontier without reaching the target.
	ErrNoPath = errors.New("routeerr: no path exists")

	// ErrTimeout means the per-query time budget expired.
	ErrTimeout = errors.New("routeerr: query exceeded time budget")
)
