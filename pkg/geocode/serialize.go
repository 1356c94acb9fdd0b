package geocode

import (
	"encoding/json"
	"fmt"
	"os"
)

// storedEntry is the on-disk JSON shape for one Entry, mirroring
// pkg/osm/cache.go's plain-slice-of-structs convention for stable diffs
// across runs.
type storedEntry struct {
	NodeID      uint32  `json:"node_id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Address     string  `json:"address"`
	HouseNumber string  `json:"house_number,omitempty"`
	StreetName  string  `json:"street_name,omitempty"`
	Kind        string  `json:"kind"`
	RankTier    int     `json:"rank_tier"`
}

// WriteEntries persists the address index's entries to path as JSON,
// alongside the graph binary artifact cmd/ingest produces.
func WriteEntries(path string, entries []Entry) error {
	out := make([]storedEntry, len(entries))
	for i, e := range entries {
		out[i] = storedEntry{
			NodeID: e.NodeID, Lat: e.Lat, Lon: e.Lon, Address: e.Address,
			HouseNumber: e.HouseNumber, StreetName: e.StreetName,
			Kind: e.Kind.String(), RankTier: e.RankTier,
		}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal address entries: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write address entries: %w", err)
	}
	return nil
}

// ReadEntries loads entries previously written by WriteEntries and rebuilds
// each entry's token cache.
func ReadEntries(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read address entries: %w", err)
	}
	var stored []storedEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal address entries: %w", err)
	}
	entries := make([]Entry, len(stored))
	for i, s := range stored {
		entries[i] = Entry{
			NodeID: s.NodeID, Lat: s.Lat, Lon: s.Lon, Address: s.Address,
			HouseNumber: s.HouseNumber, StreetName: s.StreetName,
			Kind: kindFromString(s.Kind), RankTier: s.RankTier,
			tokens: tokenize(s.Address),
		}
	}
	return entries, nil
}

func kindFromString(s string) Kind {
	switch s {
	case "street":
		return KindStreet
	case "poi":
		return KindPOI
	default:
		return KindHouse
	}
}
