// Package domain models live traffic-incident reports and their enrichment
// into ML-ready records.
//
// # Data Source
//
// Incidents originate from the TomTom Traffic Incidents API, fetched per
// bounding-box region by the source adapter with categoryFilter=Accident and
// timeValidityFilter=present. Each incident carries a GeoJSON geometry
// (Point or LineString in [lon, lat] order), a properties bag (id,
// iconCategory, startTime), and a pipeline-assigned source-region index.
//
// # Coordinate Extraction
//
// A Point geometry yields its own coordinate pair; a LineString yields its
// first vertex. Both are converted from GeoJSON [lon, lat] to (lat, lon).
// Any other geometry type, or a coordinate list that does not parse, marks
// the incident malformed and it is skipped, never aborting the batch.
//
// # Deduplication
//
// The same real-world event is frequently reported in several overlapping
// region scans. Two incidents are considered duplicates when their full
// geometry coordinate lists and icon categories match. The dedup key is a
// SHA-256 hash of those fields, so keys are deterministic across runs and
// safe to replay. First-seen wins; later duplicates are dropped, not merged.
// See [Incident.DedupKey] and [Deduplicate].
//
// # Risk Model
//
// The risk score is a fixed additive heuristic over five factor categories
// (speed, weather, time, location, parties), clamped to [0, 10]. Within a
// category only the highest matching tier counts, except location whose two
// sub-conditions (rural area, unlit road) are independent and additive.
// Levels: score >= 7 High, >= 4 Medium, else Low. The per-factor labels in
// [RiskFactors] restate the model for explainability and intentionally use
// their own thresholds (e.g. speed > 80 is labeled High although the score
// tier boundary is 100). See [ScoreRisk].
//
// # Feature Names
//
// Classification values are English (Rain/Dry, Urban/Rural, Daylight/
// Darkness) but several ML feature names keep the Dutch column names of the
// downstream training set (aantal_partijen, lichtgesteldheid, jaar,
// snelheid, gebied, wegsoort). Renaming them would break the consumer model.
package domain
