// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package mcsv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderReadAll(t *testing.T) {
	r := NewReader(strings.NewReader("a,b,c\n1,2,3\n4,5,6\n"))
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{
		{"a": "1", "b": "2", "c": "3"},
		{"a": "4", "b": "5", "c": "6"},
	}, records)
}

func TestReaderShortRecord(t *testing.T) {
	r := NewReader(strings.NewReader("a,b,c\n1,2\n"))
	record, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, record)

	_, ok := record["c"]
	assert.False(t, ok)
}

func TestReaderByteOrderMark(t *testing.T) {
	r := NewReader(strings.NewReader("\ufeffDept Sta,Arvl Sta\nJFK,ATL\n"))
	header, err := r.Header()
	require.NoError(t, err)
	assert.Equal(t, []string{"Dept Sta", "Arvl Sta"}, header)

	record, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "JFK", record["Dept Sta"])
}

func TestReaderLine(t *testing.T) {
	r := NewReader(strings.NewReader("a\n1\n2\n"))
	var lines []int
	for range r.Iter() {
		lines = append(lines, r.Line())
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []int{2, 3}, lines)
}

func TestReaderEmpty(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReaderMalformed(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\n\"1,2\n"))
	_, err := r.ReadAll()
	assert.Error(t, err)
}
