package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"weatherroute/pkg/facade"
	"weatherroute/pkg/geocode"
	"weatherroute/pkg/graph"
	"weatherroute/pkg/routeerr"
	"weatherroute/pkg/spatial"
)

// routeRequest is the JSON body of POST /route. Origin and
// Destination each hold one of a node ID, a [lat, lon] pair, or a free-text
// address, decoded lazily since the field's JSON kind selects which.
type routeRequest struct {
	Origin             json.RawMessage   `json:"origin"`
	Destination        json.RawMessage   `json:"destination"`
	Weather            graph.Weather     `json:"weather"`
	BlockingGeometries []json.RawMessage `json:"blocking_geometries"`
	FloodAreas         []json.RawMessage `json:"flood_areas"`
}

type resolvedResponse struct {
	NodeID  uint32  `json:"node_id"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Snapped bool    `json:"snapped"`
	Matched string  `json:"matched_address,omitempty"`
}

type statsResponse struct {
	NodesVisited int     `json:"nodes_visited"`
	ElapsedMs    float64 `json:"elapsed_ms"`
	PathLength   int     `json:"path_length"`
}

type routeResponse struct {
	Distance float64          `json:"distance"`
	Duration float64          `json:"duration"`
	Route    *geojson.Feature `json:"route"`
	Path     []uint32         `json:"path"`
	Resolved resolvedPair     `json:"resolved"`
	Stats    statsResponse    `json:"stats"`
}

type resolvedPair struct {
	Origin      resolvedResponse `json:"origin"`
	Destination resolvedResponse `json:"destination"`
}

func newRouteHandler(f *facade.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req routeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		origin, err := parseInput(req.Origin)
		if err != nil {
			http.Error(w, "invalid origin: "+err.Error(), http.StatusBadRequest)
			return
		}
		destination, err := parseInput(req.Destination)
		if err != nil {
			http.Error(w, "invalid destination: "+err.Error(), http.StatusBadRequest)
			return
		}
		weather := req.Weather
		if weather == "" {
			weather = graph.Normal
		}

		blocking, err := parseFeatures(req.BlockingGeometries, "block")
		if err != nil {
			http.Error(w, "invalid blocking_geometries: "+err.Error(), http.StatusBadRequest)
			return
		}
		flood, err := parseFeatures(req.FloodAreas, "flood")
		if err != nil {
			http.Error(w, "invalid flood_areas: "+err.Error(), http.StatusBadRequest)
			return
		}

		result, err := f.Route(r.Context(), origin, destination, weather, blocking, flood)
		if err != nil {
			writeRouteError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRouteResponse(result))
	}
}

func newSuggestHandler(idx *geocode.Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if len(q) < 2 {
			http.Error(w, "q must be at least 2 characters", http.StatusBadRequest)
			return
		}
		limit := 5
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= 20 {
				limit = n
			}
		}
		matches := idx.Search(q, limit)
		writeJSON(w, http.StatusOK, matches)
	}
}

// parseInput decodes one of the three accepted origin/destination shapes:
// a bare integer node ID, a [lat, lon] pair, or a quoted address string.
func parseInput(raw json.RawMessage) (facade.Input, error) {
	var id uint32
	if err := json.Unmarshal(raw, &id); err == nil {
		return facade.NodeInput(id), nil
	}
	var coords [2]float64
	if err := json.Unmarshal(raw, &coords); err == nil {
		return facade.CoordsInput(coords[0], coords[1]), nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return facade.AddressInput(text), nil
	}
	return facade.Input{}, errors.New("must be a node id, [lat, lon], or address string")
}

// parseFeatures decodes a list of raw GeoJSON Feature objects into
// spatial.Feature rings, reading each polygon's outer ring plus its
// blockType/penalty properties (falling back to defaultBlockType when the
// feature carries none, since blocking_geometries/flood_areas are supplied
// as separate request fields rather than tagged individually).
func parseFeatures(raw []json.RawMessage, defaultBlockType string) ([]spatial.Feature, error) {
	features := make([]spatial.Feature, 0, len(raw))
	for _, r := range raw {
		gf, err := geojson.UnmarshalFeature(r)
		if err != nil {
			return nil, err
		}
		poly, ok := gf.Geometry.(orb.Polygon)
		if !ok || len(poly) == 0 {
			return nil, errors.New("feature geometry must be a Polygon")
		}
		ring := poly[0]
		lats := make([]float64, len(ring))
		lons := make([]float64, len(ring))
		for i, pt := range ring {
			lons[i], lats[i] = pt[0], pt[1]
		}

		blockType := defaultBlockType
		if bt, ok := gf.Properties["blockType"].(string); ok && bt != "" {
			blockType = bt
		}
		penalty, _ := gf.Properties["penalty"].(float64)

		features = append(features, spatial.Feature{
			BlockType: blockType,
			Penalty:   penalty,
			RingLat:   lats,
			RingLon:   lons,
		})
	}
	return features, nil
}

func toRouteResponse(r *facade.RouteResult) routeResponse {
	line := make(orb.LineString, len(r.Lats))
	for i := range r.Lats {
		line[i] = orb.Point{r.Lons[i], r.Lats[i]}
	}
	feature := geojson.NewFeature(line)

	return routeResponse{
		Distance: r.DistanceM,
		Duration: r.DurationS,
		Route:    feature,
		Path:     r.Path,
		Resolved: resolvedPair{
			Origin:      toResolvedResponse(r.Origin),
			Destination: toResolvedResponse(r.Destination),
		},
		Stats: statsResponse{
			NodesVisited: r.Stats.NodesVisited,
			ElapsedMs:    r.Stats.ElapsedMs,
			PathLength:   r.Stats.PathLength,
		},
	}
}

func toResolvedResponse(r facade.Resolved) resolvedResponse {
	return resolvedResponse{
		NodeID:  r.NodeID,
		Lat:     r.Lat,
		Lon:     r.Lon,
		Snapped: r.Snapped,
		Matched: r.MatchedAddress,
	}
}

func writeRouteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, routeerr.ErrUnknownEndpoint), errors.Is(err, routeerr.ErrGeocodeMiss):
		status = http.StatusNotFound
	case errors.Is(err, routeerr.ErrSameEndpoint), errors.Is(err, routeerr.ErrSnapFailure):
		status = http.StatusBadRequest
	case errors.Is(err, routeerr.ErrNoPath):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, routeerr.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
