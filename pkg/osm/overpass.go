package osm

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	overpass "github.com/MeKo-Christian/go-overpass"

	"weatherroute/pkg/routeerr"
)

// defaultEndpoints is the fallback chain: the main public instance first,
// then two community mirrors.
var defaultEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://maps.mail.ru/osm/tools/overpass/api/interpreter",
}

// allowedHighways is the set of highway classes the Overpass query asks
// for. Kept here (rather than in pkg/graph) because a narrower query means
// less data to fetch and cache; pkg/graph's way filter re-checks the same
// set since cached data may predate a change to this list.
var allowedHighways = []string{
	"motorway", "motorway_link",
	"trunk", "trunk_link",
	"primary", "primary_link",
	"secondary", "secondary_link",
	"tertiary", "tertiary_link",
	"residential", "living_street", "unclassified", "service",
}

// Fetcher retrieves OSM data for a bbox from Overpass, with disk caching
// and multi-endpoint fallback.
type Fetcher struct {
	endpoints  []string
	workers    int
	httpClient *http.Client
	cache      *Cache
}

// NewFetcher builds a Fetcher caching raw responses under cacheDir. An
// empty cacheDir disables caching.
func NewFetcher(cacheDir string) *Fetcher {
	return &Fetcher{
		endpoints:  defaultEndpoints,
		workers:    2,
		httpClient: http.DefaultClient,
		cache:      NewCache(cacheDir),
	}
}

// WithEndpoints overrides the fallback chain, e.g. to point at a private
// instance first.
func (f *Fetcher) WithEndpoints(endpoints ...string) *Fetcher {
	f.endpoints = endpoints
	return f
}

// Fetch returns parsed OSM data for bbox, consulting the disk cache first
// and falling back across endpoints on failure. Returns routeerr.ErrIngestFailure
// only once every endpoint has failed.
func (f *Fetcher) Fetch(ctx context.Context, bbox BBox) (*Data, error) {
	if data, ok := f.cache.Load(bbox); ok {
		log.Printf("osm: cache hit for bbox %s", bbox.CacheKey())
		return data, nil
	}

	query := buildQuery(bbox)

	var lastErr error
	for _, endpoint := range f.endpoints {
		retryCfg := overpass.DefaultRetryConfig()
		client := overpass.NewWithRetry(endpoint, f.workers, f.httpClient, retryCfg)

		log.Printf("osm: querying %s for bbox %s", endpoint, bbox.CacheKey())
		result, err := client.Query(query)
		if err != nil {
			log.Printf("osm: endpoint %s failed: %v", endpoint, err)
			lastErr = err
			continue
		}

		data := convertResult(&result)
		f.cache.Store(bbox, data)
		return data, nil
	}

	return nil, fmt.Errorf("%w: %v", routeerr.ErrIngestFailure, lastErr)
}

// buildQuery assembles an Overpass QL query selecting drivable ways plus
// address-bearing nodes within bbox.
func buildQuery(bbox BBox) string {
	box := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", bbox.MinLat, bbox.MinLon, bbox.MaxLat, bbox.MaxLon)
	hw := strings.Join(allowedHighways, "|")

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:180];\n(\n")
	fmt.Fprintf(&b, "  way[\"highway\"~\"^(%s)$\"](%s);\n", hw, box)
	fmt.Fprintf(&b, "  node[\"addr:housenumber\"](%s);\n", box)
	fmt.Fprintf(&b, "  node[\"name\"][\"amenity\"](%s);\n", box)
	fmt.Fprintf(&b, "  node[\"name\"][\"shop\"](%s);\n", box)
	fmt.Fprintf(&b, "  node[\"name\"][\"tourism\"](%s);\n", box)
	fmt.Fprintf(&b, "  node[\"name\"][\"building\"](%s);\n", box)
	fmt.Fprintf(&b, ");\nout geom qt;")
	return b.String()
}

// convertResult flattens an overpass.Result into our own Data shape,
// collecting both way-referenced nodes (for geometry) and the freestanding
// address/POI nodes returned alongside them.
func convertResult(result *overpass.Result) *Data {
	data := &Data{
		Nodes: make(map[NodeID]*Node, len(result.Nodes)),
		Ways:  make([]*Way, 0, len(result.Ways)),
	}

	for id, n := range result.Nodes {
		data.Nodes[NodeID(id)] = &Node{
			ID:   NodeID(id),
			Lat:  n.Lat,
			Lon:  n.Lon,
			Tags: n.Tags,
		}
	}

	for id, w := range result.Ways {
		way := &Way{ID: WayID(id), Tags: w.Tags}
		for _, n := range w.Nodes {
			way.NodeIDs = append(way.NodeIDs, NodeID(n.ID))
			// "out geom" inlines coordinates on every way node; fill in
			// any node the Nodes map missed (e.g. untagged geometry-only
			// vertices that Overpass returns solely attached to the way).
			if _, ok := data.Nodes[NodeID(n.ID)]; !ok {
				data.Nodes[NodeID(n.ID)] = &Node{ID: NodeID(n.ID), Lat: n.Lat, Lon: n.Lon}
			}
		}
		data.Ways = append(data.Ways, way)
	}

	return data
}
