package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgVector_String(t *testing.T) {
	tests := []struct {
		name   string
		floats []float64
		want   string
	}{
		{name: "empty", floats: nil, want: "[]"},
		{name: "single", floats: []float64{1.5}, want: "[1.5]"},
		{name: "several", floats: []float64{1, -2.25, 0.5}, want: "[1,-2.25,0.5]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPgVector(tt.floats).String())
		})
	}
}

func TestPgVector_ScanRoundTrip(t *testing.T) {
	original := NewPgVector([]float64{0.1, -4, 2.75})

	value, err := original.Value()
	require.NoError(t, err)

	var scanned PgVector
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original.Floats(), scanned.Floats())
	assert.Equal(t, 3, scanned.Dimensions())
}

func TestPgVector_Scan(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []float64
	}{
		{name: "string", input: "[1,2,3]", want: []float64{1, 2, 3}},
		{name: "bytes", input: []byte("[0.5,1.5]"), want: []float64{0.5, 1.5}},
		{name: "spaces", input: "[ 1 , 2 ]", want: []float64{1, 2}},
		{name: "empty literal", input: "[]", want: []float64{}},
		{name: "blank", input: "", want: []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v PgVector
			require.NoError(t, v.Scan(tt.input))
			assert.Equal(t, tt.want, v.Floats())
		})
	}
}

func TestPgVector_ScanNil(t *testing.T) {
	var v PgVector
	require.NoError(t, v.Scan(nil))
	assert.Nil(t, v.Floats())
}

func TestPgVector_ScanRejectsOtherTypes(t *testing.T) {
	var v PgVector
	assert.Error(t, v.Scan(42))
	assert.Error(t, v.Scan("[1,oops]"))
}

func TestPgVector_CopiesInput(t *testing.T) {
	source := []float64{1, 2}
	v := NewPgVector(source)
	source[0] = 99
	assert.Equal(t, []float64{1, 2}, v.Floats())
}
