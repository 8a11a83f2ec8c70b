package mna

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// ReadComparables decodes a CSV with a name,ev,ebitda,price,earnings header.
func ReadComparables(r io.Reader) ([]Comparable, error) {
	rows := []Comparable{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse comparables csv: %w", err)
	}
	return rows, nil
}

// ReadTransactions decodes a CSV with a name,ev,ebitda,revenue header.
func ReadTransactions(r io.Reader) ([]Transaction, error) {
	rows := []Transaction{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse transactions csv: %w", err)
	}
	return rows, nil
}

// LoadComparables reads a comparables CSV from path.
func LoadComparables(path string) ([]Comparable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadComparables(f)
}

// LoadTransactions reads a precedent transactions CSV from path.
func LoadTransactions(path string) ([]Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTransactions(f)
}
