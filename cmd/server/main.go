package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"weatherroute/pkg/facade"
	"weatherroute/pkg/geocode"
	"weatherroute/pkg/graph"
	"weatherroute/pkg/spatial"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph binary")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	start := time.Now()

	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Printf("Failed to load graph: %v", err)
		os.Exit(1)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	addrPath := *graphPath + ".addr.json"
	log.Printf("Loading address index from %s...", addrPath)
	entries, err := geocode.ReadEntries(addrPath)
	if err != nil {
		log.Printf("Failed to load address index: %v", err)
		os.Exit(1)
	}

	log.Println("Building spatial indices...")
	nodeIdx := spatial.NewNodeIndex(g)
	obstrIdx := spatial.NewObstructionIndex(g)
	addrIdx := geocode.NewIndex(entries)

	f := facade.New(g, nodeIdx, obstrIdx, addrIdx)
	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	mux := http.NewServeMux()
	mux.HandleFunc("/route", newRouteHandler(f))
	mux.HandleFunc("/suggest", newSuggestHandler(addrIdx))

	log.Printf("Listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
