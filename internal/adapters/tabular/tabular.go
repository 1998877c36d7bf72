package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"route-pool-service/internal/domain"
	"strconv"
	"strings"
)

// Dataset is the joined content of the three input tables.
type Dataset struct {
	Matrix *domain.TravelMatrix
	Depot  domain.Location
	// Demand locations in travel-matrix column order, depot excluded.
	Locations []domain.Location
}

// ReadTravelTimes parses a square matrix whose header row lists location
// names after one leading cell, and whose first column repeats them. The
// value in row from, column to is the cost of travelling from -> to.
func ReadTravelTimes(r io.Reader) (*domain.TravelMatrix, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("read travel times: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("read travel times: need a header and at least one row")
	}

	header := records[0][1:]
	names := make([]string, len(header))
	col := make(map[string]int, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
		col[names[i]] = i
	}

	rows := make(map[string][]float64, len(names))
	for n, rec := range records[1:] {
		if len(rec) != len(header)+1 {
			return nil, fmt.Errorf("read travel times: line %d has %d fields, want %d", n+2, len(rec), len(header)+1)
		}
		from := strings.TrimSpace(rec[0])
		if _, ok := col[from]; !ok {
			return nil, fmt.Errorf("read travel times: line %d: row %q is not a column", n+2, from)
		}
		row := make([]float64, len(header))
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("read travel times: %q -> %q: %w", from, names[j], err)
			}
			row[j] = v
		}
		rows[from] = row
	}

	costs := make([][]float64, len(names))
	for i, n := range names {
		row, ok := rows[n]
		if !ok {
			return nil, fmt.Errorf("read travel times: %w", &domain.LookupMissError{Table: "travel times", From: n})
		}
		costs[i] = row
	}

	m, err := domain.NewTravelMatrix(names, costs)
	if err != nil {
		return nil, fmt.Errorf("read travel times: %w", err)
	}
	return m, nil
}

// ReadCoordinates parses the location table. It needs Store, Lat and Long
// columns; other columns (Type, ...) are ignored.
func ReadCoordinates(r io.Reader) (map[string]domain.Coordinates, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read locations: empty table")
	}

	idx, err := columns(records[0], "Store", "Lat", "Long")
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, fmt.Errorf("read locations: line %d has %d fields, want %d", n+2, len(rec), len(records[0]))
		}
		name := strings.TrimSpace(rec[idx["Store"]])
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["Lat"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("read locations: line %d lat: %w", n+2, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["Long"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("read locations: line %d long: %w", n+2, err)
		}
		c := domain.Coordinates{Lon: lon, Lat: lat}
		if err := c.Valid(); err != nil {
			return nil, fmt.Errorf("read locations: line %d %q: %w", n+2, name, err)
		}
		out[name] = c
	}
	return out, nil
}

// ReadDemand parses the demand table: names in the first column and a
// demand column.
func ReadDemand(r io.Reader) (map[string]float64, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("read demand: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read demand: empty table")
	}

	idx, err := columns(records[0], "demand")
	if err != nil {
		return nil, fmt.Errorf("read demand: %w", err)
	}

	out := make(map[string]float64, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, fmt.Errorf("read demand: line %d has %d fields, want %d", n+2, len(rec), len(records[0]))
		}
		name := strings.TrimSpace(rec[0])
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["demand"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("read demand: line %d %q: %w", n+2, name, err)
		}
		out[name] = v
	}
	return out, nil
}

// LoadDataset joins the three tables around the named depot.
func LoadDataset(travelTimes, locations, demand io.Reader, depotName string) (*Dataset, error) {
	m, err := ReadTravelTimes(travelTimes)
	if err != nil {
		return nil, err
	}
	coords, err := ReadCoordinates(locations)
	if err != nil {
		return nil, err
	}
	demands, err := ReadDemand(demand)
	if err != nil {
		return nil, err
	}

	if !m.Has(depotName) {
		return nil, fmt.Errorf("load dataset: %w", &domain.LookupMissError{Table: "travel times", From: depotName})
	}
	dc, ok := coords[depotName]
	if !ok {
		return nil, fmt.Errorf("load dataset: %w", &domain.LookupMissError{Table: "locations", From: depotName})
	}
	depot, err := domain.NewDepot(depotName, dc)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	ds := &Dataset{Matrix: m, Depot: depot}
	for _, name := range m.Names() {
		if name == depotName {
			continue
		}
		c, ok := coords[name]
		if !ok {
			return nil, fmt.Errorf("load dataset: %w", &domain.LookupMissError{Table: "locations", From: name})
		}
		d, ok := demands[name]
		if !ok {
			return nil, fmt.Errorf("load dataset: %w", &domain.LookupMissError{Table: "demand", From: name})
		}
		loc, err := domain.NewLocation(name, c, d)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		ds.Locations = append(ds.Locations, loc)
	}

	return ds, nil
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

func columns(header []string, want ...string) (map[string]int, error) {
	idx := make(map[string]int, len(want))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	out := make(map[string]int, len(want))
	for _, w := range want {
		i, ok := idx[w]
		if !ok {
			return nil, fmt.Errorf("missing column %q", w)
		}
		out[w] = i
	}
	return out, nil
}
