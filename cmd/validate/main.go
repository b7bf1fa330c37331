// Command validate performs data integrity checks across the incident
// pipeline artifacts: the incident fixture and the results.json output. It
// verifies field presence, score bounds, risk-level consistency, and that the
// persisted assessments match a re-run of the domain scoring.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -fixture data/mock/incidents.json \
//	  -results output/results.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/traffic-incident-etl/internal/adapter/file"
	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixturePath := flag.String("fixture", "", "path to the incident fixture JSON (optional)")
	resultsPath := flag.String("results", "", "path to the results.json artifact")
	flag.Parse()

	if *resultsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixturePath, *resultsPath); code != 0 {
		os.Exit(code)
	}
}

func run(fixturePath, resultsPath string) int {
	fmt.Println("=== Incident Data Integrity Validation ===")
	fmt.Println()

	var phases []*phase
	var incidents []domain.Incident

	if fixturePath != "" {
		var err error
		incidents, err = loadFixture(fixturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
			return 1
		}
		phases = append(phases, validateFixture(incidents))
	}

	records, err := file.ReadResults(resultsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load results: %v\n", err)
		return 1
	}

	phases = append(phases,
		validateRecordFields(records),
		validateRiskConsistency(records),
	)
	if fixturePath != "" {
		phases = append(phases, validateCoverage(incidents, records))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d fixture incidents, %d enriched results\n", len(incidents), len(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadFixture(path string) ([]domain.Incident, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		Incidents []domain.Incident `json:"incidents"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Incidents != nil {
		return wrapped.Incidents, nil
	}
	var bare []domain.Incident
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

// ── Phase 1: Fixture Integrity ──
// Validates raw incidents: usable geometry and plausible coordinates.

func validateFixture(incidents []domain.Incident) *phase {
	p := &phase{name: "Phase 1: Fixture Integrity (raw incidents)"}

	for i, inc := range incidents {
		lat, lon, err := inc.Geometry.FirstPoint()
		if err != nil {
			p.errorf("incident %d (%s): unusable geometry: %v", i, inc.Properties.ID, err)
			continue
		}
		// Rough Netherlands envelope, matching the coverage boxes.
		if lat < 50.5 || lat > 53.7 || lon < 3.0 || lon > 7.3 {
			p.errorf("incident %d (%s): coordinates (%.4f, %.4f) outside the Netherlands", i, inc.Properties.ID, lat, lon)
		}
		if inc.Properties.IconCategory <= 0 {
			p.errorf("incident %d (%s): invalid iconCategory %d", i, inc.Properties.ID, inc.Properties.IconCategory)
		}
	}

	unique := domain.Deduplicate(incidents)
	fmt.Printf("  Note: %d incidents, %d unique after dedup\n", len(incidents), len(unique))
	return p
}

// ── Phase 2: Record Fields ──
// Validates required fields on every enriched record.

var (
	validLevels    = map[string]bool{domain.RiskLow: true, domain.RiskMedium: true, domain.RiskHigh: true}
	validAreas     = map[string]bool{domain.AreaUrban: true, domain.AreaRural: true}
	validLightings = map[string]bool{
		domain.LightingDaylight:   true,
		domain.LightingArtificial: true,
		domain.LightingDarkness:   true,
	}
)

func validateRecordFields(records []domain.EnrichedIncident) *phase {
	p := &phase{name: "Phase 2: Record Fields (results.json)"}

	seenIDs := map[string]bool{}
	for i, r := range records {
		pf := func(format string, args ...any) {
			p.errorf("record %d (%s): "+format, append([]any{i, r.Metadata.IncidentID}, args...)...)
		}

		if r.Metadata.IncidentID == "" {
			pf("incident_id is empty")
		} else if seenIDs[r.Metadata.IncidentID] {
			pf("duplicate incident_id")
		}
		seenIDs[r.Metadata.IncidentID] = true

		if r.Metadata.RunID == "" {
			pf("run_id is empty")
		}
		if r.Metadata.SourceRegion <= 0 {
			pf("source_region %d is not 1-based", r.Metadata.SourceRegion)
		}
		if r.Metadata.CoordsDisplay == "" {
			pf("coordinates_display is empty")
		}
		if r.Location.Region == "" {
			pf("region is empty")
		}
		if !validAreas[r.Location.AreaClassification] {
			pf("area_classification %q not in {Urban, Rural}", r.Location.AreaClassification)
		}
		if !validLightings[r.Risk.Lighting] {
			pf("lighting_conditions %q is not a known classification", r.Risk.Lighting)
		}
		if r.Risk.Score < 0 || r.Risk.Score > 10 {
			pf("overall_risk_score %g outside [0, 10]", r.Risk.Score)
		}
		if !validLevels[r.Risk.Level] {
			pf("risk_level %q not in {Low, Medium, High}", r.Risk.Level)
		}
		if r.Risk.EstimatedParties < 1 {
			pf("estimated_parties_involved %d < 1", r.Risk.EstimatedParties)
		}
		if r.ProcessedAt.IsZero() {
			pf("processed_at is zero")
		}

		checkMLMirror(pf, r)
	}
	return p
}

// checkMLMirror verifies the flattened ML view matches the complete feature set.
func checkMLMirror(pf func(string, ...any), r domain.EnrichedIncident) {
	f := r.Features
	ml := r.MLFeatures

	if !floatEq(ml.Lat, f.Lat) || !floatEq(ml.Lon, f.Lon) {
		pf("ml coordinates (%g, %g) do not match feature set (%g, %g)", ml.Lat, ml.Lon, f.Lat, f.Lon)
	}
	if ml.SpeedLimit != f.SpeedLimit {
		pf("ml snelheid %d does not match feature speed_limit %d", ml.SpeedLimit, f.SpeedLimit)
	}
	if ml.AreaType != f.AreaType {
		pf("ml gebied %q does not match feature area_type %q", ml.AreaType, f.AreaType)
	}
	if ml.Lighting != f.Lighting {
		pf("ml lichtgesteldheid %q does not match feature set %q", ml.Lighting, f.Lighting)
	}
	if ml.RoadType != f.RoadType {
		pf("ml wegsoort %q does not match feature road_type %q", ml.RoadType, f.RoadType)
	}
	if ml.PartyCount != f.PartyCount {
		pf("ml aantal_partijen %d does not match feature set %d", ml.PartyCount, f.PartyCount)
	}
	if ml.Year != f.Year {
		pf("ml jaar %d does not match feature year %d", ml.Year, f.Year)
	}
}

// ── Phase 3: Risk Consistency ──
// Re-runs the domain scoring on each record's feature set and compares.

func validateRiskConsistency(records []domain.EnrichedIncident) *phase {
	p := &phase{name: "Phase 3: Risk Consistency (re-scored)"}

	for i, r := range records {
		expected := domain.ScoreRisk(r.Features)

		if !floatEq(r.Risk.Score, expected.Score) {
			p.errorf("record %d (%s): score %g, re-scored %g", i, r.Metadata.IncidentID, r.Risk.Score, expected.Score)
		}
		if r.Risk.Level != expected.Level {
			p.errorf("record %d (%s): level %q, re-scored %q", i, r.Metadata.IncidentID, r.Risk.Level, expected.Level)
		}
		if r.Risk.Factors != expected.Factors {
			p.errorf("record %d (%s): risk_factors %+v, re-scored %+v", i, r.Metadata.IncidentID, r.Risk.Factors, expected.Factors)
		}
	}
	return p
}

// ── Phase 4: Coverage ──
// Every unique fixture incident with usable geometry must appear in results.

func validateCoverage(incidents []domain.Incident, records []domain.EnrichedIncident) *phase {
	p := &phase{name: "Phase 4: Coverage (fixture vs results)"}

	resultIDs := map[string]bool{}
	for _, r := range records {
		resultIDs[r.Metadata.IncidentID] = true
	}

	for _, inc := range domain.Deduplicate(incidents) {
		if _, _, err := inc.Geometry.FirstPoint(); err != nil {
			continue // legitimately skipped by the pipeline
		}
		id := inc.Properties.ID
		if id == "" {
			continue // fallback IDs are coordinate-derived, cannot cross-reference
		}
		if !resultIDs[id] {
			p.errorf("fixture incident %s missing from results", id)
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
