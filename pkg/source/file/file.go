// Package file loads booking and support records from local files.
//
// Supported formats, chosen by extension:
//
//	.json        array of bookings, or {"bookings": [...], "supports": [...]}
//	.yaml, .yml  same shapes as JSON
//	.csv         header row naming the fields, one booking per line
//
// Supports may also be given in a separate file of the same formats.
package file

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/source"
)

// dataset is the object form of a JSON or YAML file.
type dataset struct {
	Bookings []booking.Record `json:"bookings" yaml:"bookings"`
	Supports []booking.Record `json:"supports" yaml:"supports"`
}

// Open loads bookings (and any embedded supports) from path. If
// supportsPath is not empty its records replace the embedded ones.
func Open(path, supportsPath string) (*source.Static, error) {
	ds, err := load(path)
	if err != nil {
		return nil, err
	}
	if supportsPath != "" {
		sup, err := load(supportsPath)
		if err != nil {
			return nil, err
		}
		// A supports file holds supports at the top level.
		ds.Supports = append(sup.Supports, sup.Bookings...)
	}
	return source.NewStatic("file:"+filepath.Base(path), ds.Bookings, ds.Supports), nil
}

func load(path string) (dataset, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return dataset{}, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return dataset{}, fmt.Errorf("read %s: %w", path, err)
	}

	var ds dataset
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		ds, err = decodeJSON(data)
	case ".yaml", ".yml":
		ds, err = decodeYAML(data)
	case ".csv":
		ds.Bookings, err = decodeCSV(bytes.NewReader(data))
	default:
		return dataset{}, errors.New(errors.ErrCodeUnsupported, "unsupported file type %q (want .json, .yaml, .yml or .csv)", ext)
	}
	if err != nil {
		return dataset{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return ds, nil
}

func decodeJSON(data []byte) (dataset, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var records []booking.Record
		err := json.Unmarshal(data, &records)
		return dataset{Bookings: records}, err
	}
	var ds dataset
	err := json.Unmarshal(data, &ds)
	return ds, err
}

func decodeYAML(data []byte) (dataset, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return dataset{}, err
	}
	if len(node.Content) == 0 {
		return dataset{}, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var records []booking.Record
		err := node.Decode(&records)
		return dataset{Bookings: records}, err
	}
	var ds dataset
	err := node.Decode(&ds)
	return ds, err
}

// decodeCSV reads records keyed by the header row. Empty cells are omitted
// so optional fields stay absent.
func decodeCSV(r io.Reader) ([]booking.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []booking.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		rec := make(booking.Record, len(header))
		for i, v := range row {
			if i < len(header) && strings.TrimSpace(v) != "" {
				rec[header[i]] = v
			}
		}
		records = append(records, rec)
	}
}
