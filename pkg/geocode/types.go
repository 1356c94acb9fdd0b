// Package geocode implements the local full-text address index: extraction
// from parsed OSM data, a tokenized prefix/substring/fuzzy search pipeline
// with diacritic folding, and house-number linear interpolation against
// street-line order. Everything here is built once over the immutable final
// graph and is read-only thereafter, the same lifecycle as pkg/spatial's
// indices.
package geocode

// Kind is the category of an address entry, setting its base rank tier.
type Kind int

const (
	KindStreet Kind = iota
	KindHouse
	KindPOI
)

func (k Kind) String() string {
	switch k {
	case KindStreet:
		return "street"
	case KindHouse:
		return "house"
	case KindPOI:
		return "poi"
	default:
		return "unknown"
	}
}

// Rank tiers applied before fine-grained text relevance. Heuristic
// tunables, not guaranteed contracts.
const (
	RankStreet = 100
	RankPOI    = 80
	RankHouse  = 50
)

func rankFor(k Kind) int {
	switch k {
	case KindStreet:
		return RankStreet
	case KindPOI:
		return RankPOI
	case KindHouse:
		return RankHouse
	default:
		return 0
	}
}

// maxSnapMeters is the distance beyond which an address is dropped rather
// than attached to its nearest graph node.
const maxSnapMeters = 100.0

// Entry is one address-index record, tied to the nearest graph node within
// maxSnapMeters at extraction time.
type Entry struct {
	NodeID      uint32
	Lat, Lon    float64
	Address     string
	HouseNumber string
	StreetName  string
	Kind        Kind
	RankTier    int

	// tokens is the folded/tokenized form of Address, computed once at
	// extraction and reused by every search query against this entry.
	tokens []string
}

// Match is one scored search result.
type Match struct {
	NodeID  uint32
	Lat     float64
	Lon     float64
	Address string
	Kind    Kind
	Score   float64
}
