// Command genmock generates a deterministic incident fixture for offline runs
// and the test suites. It uses the actual domain package so the fixture
// deduplicates and enriches exactly like live TomTom data.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/incidents.json \
//	  -count 40 \
//	  -seed 1
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
)

// Incident categories as TomTom reports them: 1 is an accident, the rest are
// hazards and obstructions.
var iconCategories = []int{1, 1, 1, 6, 8, 9, 14}

var startTimes = []string{
	"2025-01-15T08:15:00Z", // morning rush
	"2025-01-15T14:30:00Z", // afternoon
	"2025-01-15T17:45:00Z", // evening rush
	"2025-01-15T23:05:00Z", // night
	"",                     // missing timestamp
}

// City anchors keep generated coordinates in plausible places.
var anchors = [][2]float64{
	{52.3676, 4.9041}, // Amsterdam
	{51.9244, 4.4777}, // Rotterdam
	{52.0705, 4.3007}, // Den Haag
	{52.0907, 5.1214}, // Utrecht
	{51.4416, 5.4697}, // Eindhoven
	{53.2194, 6.5665}, // Groningen
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the incident fixture")
	count := flag.Int("count", 40, "number of incidents to generate")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))

	incidents := make([]domain.Incident, 0, *count)
	for i := 0; i < *count; i++ {
		incidents = append(incidents, makeIncident(rng, i))
	}

	// Re-emit roughly a tenth of the incidents under a new ID to exercise
	// deduplication, the way overlapping live regions do.
	for i := 0; i < *count/10; i++ {
		dup := incidents[rng.Intn(len(incidents))]
		dup.Properties.ID = fmt.Sprintf("mock-dup-%03d", i)
		incidents = append(incidents, dup)
	}

	fixture := struct {
		Incidents []domain.Incident `json:"incidents"`
	}{Incidents: incidents}

	if err := writeJSON(*out, fixture); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(incidents)
	return nil
}

func makeIncident(rng *rand.Rand, i int) domain.Incident {
	anchor := anchors[rng.Intn(len(anchors))]
	lat := anchor[0] + (rng.Float64()-0.5)*0.2
	lon := anchor[1] + (rng.Float64()-0.5)*0.2

	var (
		geomType string
		coords   any
	)
	if rng.Intn(4) == 0 {
		// LineString incidents: a short stretch of road.
		geomType = "LineString"
		coords = [][2]float64{
			{lon, lat},
			{lon + 0.002, lat + 0.001},
			{lon + 0.004, lat + 0.002},
		}
	} else {
		geomType = "Point"
		coords = [2]float64{lon, lat}
	}

	raw, err := json.Marshal(coords)
	if err != nil {
		panic(err) // static shapes, cannot fail
	}

	return domain.Incident{
		Type: "Feature",
		Geometry: domain.Geometry{
			Type:        geomType,
			Coordinates: raw,
		},
		Properties: domain.IncidentProperties{
			ID:           fmt.Sprintf("mock-%03d", i),
			IconCategory: iconCategories[rng.Intn(len(iconCategories))],
			StartTime:    startTimes[rng.Intn(len(startTimes))],
		},
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(incidents []domain.Incident) {
	unique := domain.Deduplicate(incidents)

	categories := map[int]int{}
	regions := map[string]int{}
	accidents := 0
	for _, inc := range incidents {
		categories[inc.Properties.IconCategory]++
		if inc.Properties.IconCategory == 1 {
			accidents++
		}
		if lat, lon, err := inc.Geometry.FirstPoint(); err == nil {
			regions[domain.IdentifyRegion(lat, lon)]++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(incidents))
	fmt.Printf("Unique after dedup: %d\n", len(unique))
	fmt.Printf("Accidents (category 1): %d\n", accidents)
	fmt.Printf("By category: %v\n", categories)
	fmt.Printf("By region: %v\n", regions)
}
