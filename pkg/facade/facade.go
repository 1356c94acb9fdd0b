// Package facade implements the single routing entry point: resolve
// origin/destination (node ID, coordinates, or free-text address), build
// the per-query obstruction overlay, run A*, and assemble a result
// carrying distance, duration, merged geometry, and a timing breakdown.
// It holds no mutable state of its own beyond the immutable structures
// built once at startup; callers thread it explicitly into handlers
// rather than through a process-wide global.
package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatherroute/pkg/geocode"
	"weatherroute/pkg/graph"
	"weatherroute/pkg/routeerr"
	"weatherroute/pkg/routing"
	"weatherroute/pkg/spatial"
)

// Facade bundles every immutable structure a query needs: the compressed
// graph, its two spatial indices, the address index, and the A* searcher.
// All fields are safe for concurrent reads once construction completes.
type Facade struct {
	Graph          *graph.Graph
	NodeIndex      *spatial.NodeIndex
	ObstructionIdx *spatial.ObstructionIndex
	AddrIndex      *geocode.Index
	Searcher       *routing.Searcher
}

// New wires the four built indices into one Facade.
func New(g *graph.Graph, nodeIdx *spatial.NodeIndex, obstrIdx *spatial.ObstructionIndex, addrIdx *geocode.Index) *Facade {
	return &Facade{
		Graph:          g,
		NodeIndex:      nodeIdx,
		ObstructionIdx: obstrIdx,
		AddrIndex:      addrIdx,
		Searcher:       routing.NewSearcher(g),
	}
}

// Input is one of node ID, (lat, lon), or free-text address. Exactly one
// field is set; construct with NodeInput/CoordsInput/AddressInput.
type Input struct {
	node    *uint32
	lat     *float64
	lon     float64
	address *string
}

func NodeInput(id uint32) Input          { return Input{node: &id} }
func CoordsInput(lat, lon float64) Input { return Input{lat: &lat, lon: lon} }
func AddressInput(text string) Input     { return Input{address: &text} }

// Resolved is one endpoint's resolution record.
type Resolved struct {
	NodeID         uint32
	Lat, Lon       float64
	Snapped        bool
	MatchedAddress string
	Score          float64
	anchor         *routing.VirtualAnchor
}

// Timing is the per-query wall-clock breakdown.
type Timing struct {
	ResolveMs float64
	SearchMs  float64
	TotalMs   float64
}

// RouteResult is the full assembled answer to one Route call.
type RouteResult struct {
	DistanceM   float64
	DurationS   float64
	Lats        []float64
	Lons        []float64
	Path        []uint32
	Origin      Resolved
	Destination Resolved
	Stats       routing.Stats
	Timing      Timing
}

// Route resolves both endpoints, rejects identical resolutions, builds the
// obstruction overlay, and runs A*.
func (f *Facade) Route(ctx context.Context, origin, destination Input, weather graph.Weather, blocking, flood []spatial.Feature) (*RouteResult, error) {
	totalStart := time.Now()

	resolveStart := time.Now()
	originResolved, err := f.resolve(origin)
	if err != nil {
		return nil, fmt.Errorf("resolve origin: %w", err)
	}
	destResolved, err := f.resolve(destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	resolveMs := float64(time.Since(resolveStart)) / 1e6

	if originResolved.anchor == nil && destResolved.anchor == nil && originResolved.NodeID == destResolved.NodeID {
		return nil, routeerr.ErrSameEndpoint
	}

	features := make([]spatial.Feature, 0, len(blocking)+len(flood))
	features = append(features, blocking...)
	features = append(features, flood...)
	blocked, penalty := f.ObstructionIdx.Resolve(features)
	overlay := routing.Overlay{Blocked: blocked, Penalty: penalty}

	searchStart := time.Now()
	result, err := f.Searcher.Search(ctx, toEndpoint(originResolved), toEndpoint(destResolved), weather, overlay)
	searchMs := float64(time.Since(searchStart)) / 1e6
	if err != nil {
		return nil, err
	}

	return &RouteResult{
		DistanceM:   result.DistanceM,
		DurationS:   result.DurationS,
		Lats:        result.Lats,
		Lons:        result.Lons,
		Path:        result.Path,
		Origin:      originResolved,
		Destination: destResolved,
		Stats:       result.Stats,
		Timing: Timing{
			ResolveMs: resolveMs,
			SearchMs:  searchMs,
			TotalMs:   float64(time.Since(totalStart)) / 1e6,
		},
	}, nil
}

func toEndpoint(r Resolved) routing.Endpoint {
	if r.anchor != nil {
		return routing.AnchorEndpoint(r.anchor)
	}
	return routing.NodeEndpoint(r.NodeID)
}

// resolve dispatches to the node/coords/address resolution rule matching
// which field of in is set.
func (f *Facade) resolve(in Input) (Resolved, error) {
	switch {
	case in.node != nil:
		return f.resolveNode(*in.node)
	case in.lat != nil:
		return f.resolveCoords(*in.lat, in.lon)
	case in.address != nil:
		return f.resolveAddress(*in.address)
	default:
		return Resolved{}, errors.New("facade: empty Input")
	}
}

func (f *Facade) resolveNode(id uint32) (Resolved, error) {
	if id >= f.Graph.NumNodes {
		return Resolved{}, routeerr.ErrUnknownEndpoint
	}
	return Resolved{NodeID: id, Lat: f.Graph.NodeLat[id], Lon: f.Graph.NodeLon[id]}, nil
}

func (f *Facade) resolveCoords(lat, lon float64) (Resolved, error) {
	id, err := f.NodeIndex.Nearest(lat, lon)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{NodeID: id, Lat: f.Graph.NodeLat[id], Lon: f.Graph.NodeLon[id], Snapped: true}, nil
}

// resolveAddress tries house-number interpolation first for a parseable
// "<N> <street>" address (the precise path, landing on a VirtualAnchor
// rather than an existing node); otherwise it is a plain FTS query, taking
// the top match's node directly if its score clears 80 (fast path) or
// re-snapping its coordinates via the KD-Tree otherwise (safe path).
func (f *Facade) resolveAddress(text string) (Resolved, error) {
	if houseNumber, street, ok := geocode.ParseAddress(text); ok {
		if pt, found := f.AddrIndex.InterpolateHouseNumber(houseNumber, street); found {
			if anchor, found := geocode.ProjectToGraph(f.Graph, pt.Lat, pt.Lon); found {
				return Resolved{
					Lat: pt.Lat, Lon: pt.Lon,
					MatchedAddress: fmt.Sprintf("%d %s", houseNumber, street),
					Score:          100,
					anchor:         anchor,
				}, nil
			}
		}
	}

	matches := f.AddrIndex.Search(text, 1)
	if len(matches) == 0 {
		return Resolved{}, routeerr.ErrGeocodeMiss
	}
	top := matches[0]

	const fastPathScore = 80.0
	if top.Score >= fastPathScore {
		return Resolved{NodeID: top.NodeID, Lat: top.Lat, Lon: top.Lon, MatchedAddress: top.Address, Score: top.Score}, nil
	}

	id, err := f.NodeIndex.Nearest(top.Lat, top.Lon)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{
		NodeID: id, Lat: f.Graph.NodeLat[id], Lon: f.Graph.NodeLon[id],
		Snapped: true, MatchedAddress: top.Address, Score: top.Score,
	}, nil
}
