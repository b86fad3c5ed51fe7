package etl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mberna113/WNV-ETL-Lab2/internal/models"
)

// ReadPoints reads a transformed CSV (header "x,y,Type") back into point
// records. It is the bridge between the transform and load stages and also
// backs the output round-trip guarantee.
func ReadPoints(path string) ([]models.PointRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transformed CSV %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read transformed CSV header: %w", err)
	}
	if len(header) != 3 || header[0] != "x" || header[1] != "y" || header[2] != "Type" {
		return nil, fmt.Errorf("unexpected transformed CSV header %v, want [x y Type]", header)
	}

	var points []models.PointRecord
	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read transformed CSV row: %w", readErr)
		}

		x, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse x coordinate %q: %w", record[0], err)
		}
		y, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse y coordinate %q: %w", record[1], err)
		}

		points = append(points, models.PointRecord{X: x, Y: y, Category: record[2]})
	}

	return points, nil
}
