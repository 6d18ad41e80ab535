// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package lrt implements the likelihood-ratio test
// between two nested codon models.
package lrt

import (
	"errors"
	"fmt"

	"github.com/js-arias/evolbranch/codeml"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the default significance level.
const DefaultAlpha = 0.05

var (
	// ErrModelOrder is returned when the null model
	// has more parameters than the alternative model.
	ErrModelOrder = errors.New("first model should be the alternative")

	// ErrLowerLikelihood is returned
	// when the likelihood of the alternative model
	// is not larger than the likelihood of the null model.
	ErrLowerLikelihood = errors.New("likelihood of the alternative model is not larger than null's")
)

// Test returns the p-value of the likelihood-ratio test
// of an alternative model against a null model.
//
// The statistic is 2*|lnL(alt) - lnL(null)|,
// compared to a chi-square distribution
// with the difference in the number of parameters
// as degrees of freedom.
//
// If the alternative model has fewer parameters,
// or it does not have a larger likelihood,
// it returns 1 and an error
// that the caller can take as a warning.
func Test(alt, null *codeml.Fit) (float64, error) {
	if null.NP > alt.NP {
		return 1, fmt.Errorf("%w: %s (np=%d) vs %s (np=%d)", ErrModelOrder, alt.Model, alt.NP, null.Model, null.NP)
	}
	if null.LnL-alt.LnL >= 0 {
		return 1, fmt.Errorf("%w: (%f - %f = %f)", ErrLowerLikelihood, alt.LnL, null.LnL, alt.LnL-null.LnL)
	}
	return PValue(2*(alt.LnL-null.LnL), alt.NP-null.NP), nil
}

// PValue returns the upper tail probability
// of a chi-square distribution
// with df degrees of freedom.
// If df is zero,
// it returns 1.
func PValue(stat float64, df int) float64 {
	if df <= 0 {
		return 1
	}
	chi := distuv.ChiSquared{K: float64(df)}
	return chi.Survival(stat)
}

// Significant returns true if p is strictly smaller than alpha.
func Significant(p, alpha float64) bool {
	return p < alpha
}
