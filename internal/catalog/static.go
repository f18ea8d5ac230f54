package catalog

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// MergeStaticStops fills in stop names and route labels from a GTFS static
// zip (stops.txt, routes.txt). Entries already in the catalog win.
func MergeStaticStops(f *Feed, zipPath string, logger *slog.Logger) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	if f.Stops == nil {
		f.Stops = make(map[string]string)
	}
	if f.Routes == nil {
		f.Routes = make(map[string]Route)
	}

	var stopsAdded, routesAdded int
	for _, zf := range r.File {
		switch zf.Name {
		case "stops.txt":
			err = eachName(zf, "stop_id", []string{"stop_name"}, func(id, name string) {
				if _, ok := f.Stops[id]; ok {
					return
				}
				f.Stops[id] = name
				stopsAdded++
			})
		case "routes.txt":
			// Long names read better on a board than "9X".
			err = eachName(zf, "route_id", []string{"route_long_name", "route_short_name"}, func(id, label string) {
				existing := f.Routes[id]
				if existing.Label != "" {
					return
				}
				existing.Label = label
				f.Routes[id] = existing
				routesAdded++
			})
		default:
			continue
		}
		if err != nil {
			return fmt.Errorf("parsing %s: %w", zf.Name, err)
		}
	}

	logger.Info("GTFS static names merged", "zip", zipPath, "stops", stopsAdded, "routes", routesAdded)
	return nil
}

// eachName streams a GTFS CSV file and calls fn with the id column and the
// first non-empty of nameCols. Rows missing either are skipped.
func eachName(zf *zip.File, idCol string, nameCols []string, fn func(id, name string)) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\xef\xbb\xbf"))
	}
	idIdx := slices.Index(header, idCol)
	if idIdx < 0 {
		return fmt.Errorf("no %s column", idCol)
	}
	var nameIdx []int
	for _, c := range nameCols {
		if i := slices.Index(header, c); i >= 0 {
			nameIdx = append(nameIdx, i)
		}
	}

	field := func(rec []string, i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		id := field(rec, idIdx)
		if id == "" {
			continue
		}
		for _, i := range nameIdx {
			if name := field(rec, i); name != "" {
				fn(id, name)
				break
			}
		}
	}
}
