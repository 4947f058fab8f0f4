// Package export renders product collections to flat CSV for download and archiving.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"inventory_ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// MissingCategory is written when a product's category cannot be resolved.
const MissingCategory = "—"

// Header is the first record of every export.
var Header = []string{"nazwa", "kategoria", "liczba", "cena", "wartosc"}

// FlatRow is one product as it appears in an export.
type FlatRow struct {
	Name     string
	Category string
	Quantity int
	Price    float64
	Value    float64
}

// ToFlatRows resolves category names and computes the value column.
func ToFlatRows(products []domain.Product, lookup domain.CategoryLookup) []FlatRow {
	rows := make([]FlatRow, 0, len(products))
	for _, p := range products {
		category, ok := lookup.Name(p.CategoryID)
		if !ok {
			category = MissingCategory
		}
		rows = append(rows, FlatRow{
			Name:     p.Name,
			Category: category,
			Quantity: p.Quantity,
			Price:    p.Price,
			Value:    rowValue(p.Quantity, p.Price).InexactFloat64(),
		})
	}
	return rows
}

func rowValue(quantity int, price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// SerializeCSV writes the header followed by one record per row. Fields containing
// commas, quotes or newlines are quoted.
func SerializeCSV(rows []FlatRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("could not write export header: %w", err)
	}
	for i, r := range rows {
		record := []string{
			r.Name,
			r.Category,
			strconv.Itoa(r.Quantity),
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			decimal.NewFromFloat(r.Value).String(),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("could not write export row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("could not flush export: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseCSV reads an export produced by SerializeCSV.
func ParseCSV(data []byte) ([]FlatRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(Header)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("export is empty")
		}
		return nil, fmt.Errorf("could not read export header: %w", err)
	}
	for i, h := range Header {
		if header[i] != h {
			return nil, fmt.Errorf("unexpected export column %d: %q", i, header[i])
		}
	}

	rows := []FlatRow{}
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read export line %d: %w", line, err)
		}
		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string) (FlatRow, error) {
	quantity, err := strconv.Atoi(record[2])
	if err != nil {
		return FlatRow{}, fmt.Errorf("invalid quantity %q", record[2])
	}
	price, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return FlatRow{}, fmt.Errorf("invalid price %q", record[3])
	}
	value, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return FlatRow{}, fmt.Errorf("invalid value %q", record[4])
	}
	return FlatRow{
		Name:     record[0],
		Category: record[1],
		Quantity: quantity,
		Price:    price,
		Value:    value,
	}, nil
}

// TotalValue sums the value column.
func TotalValue(rows []FlatRow) float64 {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(decimal.NewFromFloat(r.Value))
	}
	return sum.InexactFloat64()
}
