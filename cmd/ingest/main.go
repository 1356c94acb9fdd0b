package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"weatherroute/pkg/geocode"
	"weatherroute/pkg/graph"
	"weatherroute/pkg/osm"
	"weatherroute/pkg/routeerr"
	"weatherroute/pkg/spatial"
)

func main() {
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	cacheDir := flag.String("cache-dir", "osm-cache", "Directory for cached Overpass responses")
	pbfPath := flag.String("pbf", "", "Local .osm.pbf extract to parse instead of querying Overpass")
	out := flag.String("out", "graph.bin", "Output binary graph file path")
	flag.Parse()

	if *bbox == "" {
		fmt.Fprintln(os.Stderr, "Usage: ingest -bbox minLat,minLng,maxLat,maxLng [-cache-dir osm-cache] [-out graph.bin]")
		os.Exit(1)
	}

	var box osm.BBox
	if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &box.MinLat, &box.MinLon, &box.MaxLat, &box.MaxLon); err != nil {
		log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
	}
	log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)

	start := time.Now()

	// Step 1: fetch or parse OSM data.
	var data *osm.Data
	var err error
	if *pbfPath != "" {
		log.Printf("Parsing OSM extract %s...", *pbfPath)
		data, err = osm.ParsePBF(context.Background(), *pbfPath, box)
	} else {
		log.Println("Fetching OSM data...")
		data, err = osm.NewFetcher(*cacheDir).Fetch(context.Background(), box)
	}
	if err != nil {
		log.Printf("Ingest failed: %v", err)
		os.Exit(2)
	}
	log.Printf("Fetched %d nodes, %d ways", len(data.Nodes), len(data.Ways))

	// Step 2: build graph.
	log.Println("Building graph...")
	g := graph.Build(data)
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	// Step 3: extract largest strongly connected component.
	log.Println("Extracting largest strongly connected component...")
	component := graph.LargestSCC(g)
	log.Printf("Largest component: %d nodes (%.1f%%)", len(component), float64(len(component))/float64(g.NumNodes)*100)
	g = graph.FilterToComponent(g, component)
	if g.NumNodes == 0 {
		log.Printf("Graph build failed: %v", routeerr.ErrEmptyGraph)
		os.Exit(1)
	}
	log.Printf("Filtered graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	// Step 4: compress interior chains.
	log.Println("Compressing interior chains...")
	g = graph.Compress(g)
	log.Printf("Compressed graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	// Step 5: build the KD-Tree (address extraction attaches entries by
	// coordinate against it), then serialize the graph and extract
	// addresses concurrently; both depend only on the now-immutable graph.
	log.Println("Building node index...")
	nodeIdx := spatial.NewNodeIndex(g)

	var entries []geocode.Entry
	group, _ := errgroup.WithContext(context.Background())
	group.Go(func() error {
		log.Printf("Writing binary graph to %s...", *out)
		return graph.WriteBinary(*out, g)
	})
	group.Go(func() error {
		entries = geocode.Extract(data, nodeIdx)
		return nil
	})
	if err := group.Wait(); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}
	log.Printf("Indexed %d addresses", len(entries))

	// Step 6: serialize the address index alongside the graph artifact.
	addrPath := *out + ".addr.json"
	log.Printf("Writing address index to %s...", addrPath)
	if err := geocode.WriteEntries(addrPath, entries); err != nil {
		log.Fatalf("Failed to write address index: %v", err)
	}

	info, _ := os.Stat(*out)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Second), *out, float64(info.Size())/(1024*1024))
}
