package osm

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Cache is a read-through disk cache of raw ingest responses, one
// <dir>/<sha1-of-bbox>.json file per bounding box.
type Cache struct {
	dir string
}

// NewCache returns a Cache rooted at dir. An empty dir disables caching:
// Load always misses and Store is a no-op.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) path(bbox BBox) string {
	if c.dir == "" {
		return ""
	}
	return filepath.Join(c.dir, bbox.CacheKey()+".json")
}

// Load returns cached Data for bbox, if present and parseable.
func (c *Cache) Load(bbox BBox) (*Data, bool) {
	path := c.path(bbox)
	if path == "" {
		return nil, false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var cached cachedData
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Printf("osm: cache file %s is corrupt, ignoring: %v", path, err)
		return nil, false
	}

	return cached.toData(), true
}

// Store persists data for bbox. Write failures are logged but not fatal —
// ingest already has the data in memory and the cache is best-effort.
func (c *Cache) Store(bbox BBox, data *Data) {
	path := c.path(bbox)
	if path == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("osm: cache dir creation failed: %v", err)
		return
	}

	raw, err := json.Marshal(fromData(data))
	if err != nil {
		log.Printf("osm: cache encode failed: %v", err)
		return
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		log.Printf("osm: cache write failed: %v", err)
	}
}

// cachedData is the on-disk JSON shape: plain slices rather than maps, so
// the file is stable and diffable across runs.
type cachedData struct {
	Nodes []cachedNode `json:"nodes"`
	Ways  []cachedWay  `json:"ways"`
}

type cachedNode struct {
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags,omitempty"`
}

type cachedWay struct {
	ID      int64             `json:"id"`
	NodeIDs []int64           `json:"node_ids"`
	Tags    map[string]string `json:"tags,omitempty"`
}

func fromData(data *Data) cachedData {
	out := cachedData{
		Nodes: make([]cachedNode, 0, len(data.Nodes)),
		Ways:  make([]cachedWay, 0, len(data.Ways)),
	}
	for _, n := range data.Nodes {
		out.Nodes = append(out.Nodes, cachedNode{ID: int64(n.ID), Lat: n.Lat, Lon: n.Lon, Tags: n.Tags})
	}
	for _, w := range data.Ways {
		ids := make([]int64, len(w.NodeIDs))
		for i, id := range w.NodeIDs {
			ids[i] = int64(id)
		}
		out.Ways = append(out.Ways, cachedWay{ID: int64(w.ID), NodeIDs: ids, Tags: w.Tags})
	}
	return out
}

func (c cachedData) toData() *Data {
	data := &Data{
		Nodes: make(map[NodeID]*Node, len(c.Nodes)),
		Ways:  make([]*Way, 0, len(c.Ways)),
	}
	for _, n := range c.Nodes {
		data.Nodes[NodeID(n.ID)] = &Node{ID: NodeID(n.ID), Lat: n.Lat, Lon: n.Lon, Tags: n.Tags}
	}
	for _, w := range c.Ways {
		ids := make([]NodeID, len(w.NodeIDs))
		for i, id := range w.NodeIDs {
			ids[i] = NodeID(id)
		}
		data.Ways = append(data.Ways, &Way{ID: WayID(w.ID), NodeIDs: ids, Tags: w.Tags})
	}
	return data
}
