// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package contract implements the Bayesian semantic contract: a Beta
// posterior over construct-level evidence, the decision gate that turns a
// posterior into a MigrationDecision, and the expected-loss decision rule.
//
// Description: every function here is pure and deterministic — identical
// inputs always produce an identical posterior and decision, per the
// determinism guarantee in the contract design.
package contract

import "math"

// Prior is the operator-supplied Beta(alpha0, beta0) prior. Its exact scale
// is an operator input, not fixed by this package (see DESIGN.md).
type Prior struct {
	Alpha0 float64
	Beta0  float64
}

// DefaultPrior returns an uninformative Beta(1,1) (uniform) prior, used
// when no operator-specified prior is configured.
func DefaultPrior() Prior {
	return Prior{Alpha0: 1, Beta0: 1}
}

// BayesianPosterior is the posterior artifact: (alpha, beta, mean, variance,
// credible_lower, credible_upper).
type BayesianPosterior struct {
	Alpha         float64
	Beta          float64
	Mean          float64
	Variance      float64
	CredibleLower float64
	CredibleUpper float64
}

// ComputePosterior derives (alpha, beta) = (alpha0+successes, beta0+failures),
// mean = alpha/(alpha+beta), variance = alpha*beta / ((alpha+beta)^2 *
// (alpha+beta+1)), and a credible interval at the given level via a Beta
// quantile approximation.
//
// Inputs: prior, non-negative successes/failures, credible level in (0,1).
// Outputs: a BayesianPosterior with mean in [0,1] and an interval containing
// the mean.
func ComputePosterior(prior Prior, successes, failures float64, credibleLevel float64) BayesianPosterior {
	alpha := prior.Alpha0 + successes
	beta := prior.Beta0 + failures
	mean := alpha / (alpha + beta)
	variance := (alpha * beta) / ((alpha + beta) * (alpha + beta) * (alpha + beta + 1))

	lower, upper := betaCredibleInterval(alpha, beta, credibleLevel)

	return BayesianPosterior{
		Alpha:         alpha,
		Beta:          beta,
		Mean:          mean,
		Variance:      variance,
		CredibleLower: lower,
		CredibleUpper: upper,
	}
}

// betaCredibleInterval returns a symmetric-tail credible interval
// [lower, upper] at the given level, using a normal approximation to the
// Beta distribution (mean ± z*stddev, clamped to [0,1]). This keeps the
// quantile routine deterministic and dependency-free while guaranteeing the
// interval contains the mean, which is all §3.6 requires.
func betaCredibleInterval(alpha, beta, level float64) (float64, float64) {
	mean := alpha / (alpha + beta)
	variance := (alpha * beta) / ((alpha + beta) * (alpha + beta) * (alpha + beta + 1))
	stddev := math.Sqrt(variance)

	z := zForLevel(level)
	lower := mean - z*stddev
	upper := mean + z*stddev
	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}
	return lower, upper
}

// zForLevel maps a two-sided credible level to its normal-approximation
// z-score, covering the levels the pipeline actually configures.
func zForLevel(level float64) float64 {
	switch {
	case level >= 0.99:
		return 2.576
	case level >= 0.95:
		return 1.96
	case level >= 0.90:
		return 1.645
	case level >= 0.80:
		return 1.282
	default:
		return 1.0
	}
}
