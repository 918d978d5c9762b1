// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package mcsv

import (
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"maps"
	"slices"
	"strings"
)

const byteOrderMark = "\ufeff"

// Reader reads CSV files with a header row, returning each record as a map
// from column name to value. Records shorter than the header simply lack the
// trailing columns; extra fields past the header are dropped.
type Reader struct {
	r      *csv.Reader
	header []string
	record map[string]string
	err    error
}

func NewReader(r io.Reader) *Reader {
	o := &Reader{r: csv.NewReader(r)}
	o.r.ReuseRecord = true
	o.r.FieldsPerRecord = -1
	return o
}

func (r *Reader) readHeader() {
	var row []string
	row, r.err = r.r.Read()
	if r.err != nil {
		return
	}

	r.header = slices.Clone(row)
	if len(r.header) > 0 {
		r.header[0] = strings.TrimPrefix(r.header[0], byteOrderMark)
	}
}

func (r *Reader) next() {
	if r.header == nil {
		r.readHeader()
		if r.err != nil {
			return
		}
	}

	if r.record == nil {
		r.record = make(map[string]string, len(r.header))
	} else {
		clear(r.record)
	}

	var row []string
	row, r.err = r.r.Read()
	if r.err != nil {
		return
	}

	for i, key := range r.header {
		if i < len(row) {
			r.record[key] = row[i]
		}
	}
}

// Header returns the column names, reading the header row if necessary.
func (r *Reader) Header() ([]string, error) {
	if r.header == nil && r.err == nil {
		r.readHeader()
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return r.header, nil
}

// Read returns the next record. The returned map is reused by subsequent calls.
func (r *Reader) Read() (map[string]string, error) {
	r.next()
	if r.err != nil {
		return nil, r.err
	}
	return r.record, nil
}

// Iter yields all remaining records. Yielded maps are reused between iterations.
func (r *Reader) Iter() iter.Seq[map[string]string] {
	return func(yield func(map[string]string) bool) {
		for {
			r.next()
			if r.err != nil || !yield(r.record) {
				return
			}
		}
	}
}

// ReadAll returns copies of all remaining records.
func (r *Reader) ReadAll() ([]map[string]string, error) {
	var records []map[string]string
	for record := range r.Iter() {
		records = append(records, maps.Clone(record))
	}
	return records, r.Err()
}

func (r *Reader) Err() error {
	if errors.Is(r.err, io.EOF) {
		return nil
	}
	return r.err
}

func (r *Reader) Line() int {
	line, _ := r.r.FieldPos(0)
	return line
}
