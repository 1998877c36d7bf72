package export

import (
	"encoding/json"
	"fmt"
	"io"
	"route-pool-service/internal/domain"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported pool export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Route struct {
	Stops    []string `json:"stops" yaml:"stops"`
	Distance float64  `json:"distance" yaml:"distance"`
	Demand   float64  `json:"demand" yaml:"demand"`
}

type Failure struct {
	Target   string `json:"target" yaml:"target"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Variant  int    `json:"variant" yaml:"variant"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Document is the serialized form of a candidate pool.
type Document struct {
	ID        string            `json:"id" yaml:"id"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
	Seed      int64             `json:"seed" yaml:"seed"`
	Params    domain.PoolParams `json:"params" yaml:"params"`
	// Sums over every route in the pool.
	TotalDistance float64   `json:"total_distance" yaml:"total_distance"`
	TotalDemand   float64   `json:"total_demand" yaml:"total_demand"`
	Routes        []Route   `json:"routes" yaml:"routes"`
	Failures      []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func NewDocument(pool *domain.CandidatePool) Document {
	doc := Document{
		ID:        pool.ID,
		CreatedAt: pool.CreatedAt,
		Seed:      pool.Seed,
		Params:    pool.Params,

		TotalDistance: pool.TotalDistance(),
		TotalDemand:   pool.TotalDemand(),
		Routes:        make([]Route, 0, pool.Len()),
	}
	for _, r := range pool.Routes() {
		doc.Routes = append(doc.Routes, Route{Stops: r.Names(), Distance: r.Distance(), Demand: r.Demand()})
	}
	for _, f := range pool.Failures {
		doc.Failures = append(doc.Failures, Failure(f))
	}
	return doc
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	p := strings.ToLower(path)
	if strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

func Write(w io.Writer, pool *domain.CandidatePool, format string) error {
	doc := NewDocument(pool)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("export pool json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("export pool yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("export pool yaml: %w", err)
		}
	default:
		return fmt.Errorf("export pool: unknown format %q", format)
	}
	return nil
}
