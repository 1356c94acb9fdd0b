package geocode

import (
	"weatherroute/pkg/geo"
	"weatherroute/pkg/osm"
	"weatherroute/pkg/spatial"
)

// Extract pulls street, house, and POI entries from the raw OSM data, each
// tied to its nearest graph node via idx and dropped if that node is more
// than maxSnapMeters away.
func Extract(data *osm.Data, idx *spatial.NodeIndex) []Entry {
	var entries []Entry
	seenPOI := make(map[osm.NodeID]bool)

	entries = extractStreets(data, idx, entries)
	entries = extractHouses(data, idx, entries)
	entries = extractPOIs(data, idx, seenPOI, entries)

	for i := range entries {
		entries[i].tokens = tokenize(entries[i].Address)
	}
	return entries
}

func attach(idx *spatial.NodeIndex, lat, lon float64) (uint32, bool) {
	node, err := idx.Nearest(lat, lon)
	if err != nil {
		return 0, false
	}
	nodeLat, nodeLon := idx.Coords(node)
	if geo.Haversine(lat, lon, nodeLat, nodeLon) > maxSnapMeters {
		return 0, false
	}
	return node, true
}

// extractStreets adds one entry per named way, attached to the way's first
// node that snaps within range.
func extractStreets(data *osm.Data, idx *spatial.NodeIndex, entries []Entry) []Entry {
	for _, way := range data.Ways {
		name := osm.Tag(way.Tags, "name")
		if name == "" {
			continue
		}
		for _, nid := range way.NodeIDs {
			n, ok := data.Nodes[nid]
			if !ok {
				continue
			}
			node, ok := attach(idx, n.Lat, n.Lon)
			if !ok {
				continue
			}
			entries = append(entries, Entry{
				NodeID:     node,
				Lat:        n.Lat,
				Lon:        n.Lon,
				Address:    name,
				StreetName: name,
				Kind:       KindStreet,
				RankTier:   RankStreet,
			})
			break
		}
	}
	return entries
}

// extractHouses adds one entry per node carrying addr:housenumber. Street
// name prefers addr:street; failing that, the nearest named way by centroid
// distance.
func extractHouses(data *osm.Data, idx *spatial.NodeIndex, entries []Entry) []Entry {
	namedWayCentroids := collectNamedWayCentroids(data)

	for _, n := range data.Nodes {
		house := osm.Tag(n.Tags, "addr:housenumber")
		if house == "" {
			continue
		}
		street := osm.Tag(n.Tags, "addr:street")
		if street == "" {
			street = nearestWayName(n.Lat, n.Lon, namedWayCentroids)
		}
		if street == "" {
			continue
		}
		node, ok := attach(idx, n.Lat, n.Lon)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			NodeID:      node,
			Lat:         n.Lat,
			Lon:         n.Lon,
			Address:     house + " " + street,
			HouseNumber: house,
			StreetName:  street,
			Kind:        KindHouse,
			RankTier:    RankHouse,
		})
	}
	return entries
}

// extractPOIs adds one entry per named node carrying an amenity/shop/
// tourism/building tag that was not already captured as a house entry.
func extractPOIs(data *osm.Data, idx *spatial.NodeIndex, seen map[osm.NodeID]bool, entries []Entry) []Entry {
	poiTags := []string{"amenity", "shop", "tourism", "building"}

	for id, n := range data.Nodes {
		if seen[id] {
			continue
		}
		name := osm.Tag(n.Tags, "name")
		if name == "" {
			continue
		}
		if osm.Tag(n.Tags, "addr:housenumber") != "" {
			continue // already represented as a house entry
		}
		isPOI := false
		for _, tag := range poiTags {
			if osm.Tag(n.Tags, tag) != "" {
				isPOI = true
				break
			}
		}
		if !isPOI {
			continue
		}
		node, ok := attach(idx, n.Lat, n.Lon)
		if !ok {
			continue
		}
		seen[id] = true
		entries = append(entries, Entry{
			NodeID:   node,
			Lat:      n.Lat,
			Lon:      n.Lon,
			Address:  name,
			Kind:     KindPOI,
			RankTier: RankPOI,
		})
	}
	return entries
}

type namedWayCentroid struct {
	name     string
	lat, lon float64
}

func collectNamedWayCentroids(data *osm.Data) []namedWayCentroid {
	var out []namedWayCentroid
	for _, way := range data.Ways {
		name := osm.Tag(way.Tags, "name")
		if name == "" || len(way.NodeIDs) == 0 {
			continue
		}
		var sumLat, sumLon float64
		var n int
		for _, nid := range way.NodeIDs {
			node, ok := data.Nodes[nid]
			if !ok {
				continue
			}
			sumLat += node.Lat
			sumLon += node.Lon
			n++
		}
		if n == 0 {
			continue
		}
		out = append(out, namedWayCentroid{name: name, lat: sumLat / float64(n), lon: sumLon / float64(n)})
	}
	return out
}

func nearestWayName(lat, lon float64, centroids []namedWayCentroid) string {
	best := ""
	bestDist := -1.0
	for _, c := range centroids {
		d := geo.EquirectangularDist(lat, lon, c.lat, c.lon)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = c.name
		}
	}
	return best
}
