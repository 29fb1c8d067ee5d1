// Package dataset loads and produces client demand points.
package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"

	"cellplan/internal/model"
)

// Load reads clients from a 3-column delimited file (id, x, y). Header and
// malformed rows are skipped, not fatal.
func Load(path string) ([]model.Client, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var clients []model.Client
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}
		if len(row) < 3 {
			continue
		}
		x, errX := strconv.ParseFloat(row[1], 64)
		y, errY := strconv.ParseFloat(row[2], 64)
		if errX != nil || errY != nil {
			continue
		}
		clients = append(clients, model.Client{ID: row[0], X: x, Y: y})
	}
	return clients, nil
}

// Write saves clients as CSV with an id,x,y header.
func Write(path string, clients []model.Client) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "x", "y"}); err != nil {
		return err
	}
	for _, client := range clients {
		row := []string{
			client.ID,
			strconv.FormatFloat(client.X, 'g', -1, 64),
			strconv.FormatFloat(client.Y, 'g', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
