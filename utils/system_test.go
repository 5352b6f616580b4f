package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestIsNan(t *testing.T) {
	nan := math.NaN()
	assert.True(t, IsNan(nan))
	assert.True(t, IsNan([]float64{1, nan}))
	assert.True(t, IsNan([]complex128{1, complex(0, nan)}))
	assert.True(t, IsNan(mat.NewCDense(2, 1, []complex128{0, complex(nan, 1)})))
	assert.False(t, IsNan(mat.NewCDense(2, 2, nil)))
	assert.False(t, IsNan(complex(1, 2)))
	assert.False(t, IsNan("not a number type"))
	assert.True(t, strings.HasPrefix(GetMemUsage(), "Alloc = "))
}
