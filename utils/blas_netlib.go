//go:build cgo && netlib
// +build cgo,netlib

package utils

/*
#cgo LDFLAGS: -lopenblas -lgfortran -lm -lpthread
#include <cblas.h>
*/
import "C"

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Building with -tags netlib routes the real and complex GEMM calls of the
// band driver through OpenBLAS.
func init() {
	blas64.Use(netblas.Implementation{})
	cblas128.Use(netblas.Implementation{})
}
