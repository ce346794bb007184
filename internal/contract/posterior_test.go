package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePosteriorMeanInUnitInterval(t *testing.T) {
	p := ComputePosterior(DefaultPrior(), 8, 2, 0.95)
	require.GreaterOrEqual(t, p.Mean, 0.0)
	require.LessOrEqual(t, p.Mean, 1.0)
	assert.LessOrEqual(t, p.CredibleLower, p.Mean)
	assert.GreaterOrEqual(t, p.CredibleUpper, p.Mean)
}

func TestComputePosteriorMonotonicity(t *testing.T) {
	prior := DefaultPrior()
	base := ComputePosterior(prior, 5, 5, 0.95)
	moreSuccess := ComputePosterior(prior, 5+3, 5, 0.95)
	moreFailure := ComputePosterior(prior, 5, 5+3, 0.95)

	assert.GreaterOrEqualf(t, moreSuccess.Mean, base.Mean, "adding successes must not decrease mean")
	assert.LessOrEqualf(t, moreFailure.Mean, base.Mean, "adding failures must not increase mean")
}

func TestComputePosteriorScalingDoesNotIncreaseVariance(t *testing.T) {
	prior := DefaultPrior()
	base := ComputePosterior(prior, 5, 5, 0.95)
	scaled := ComputePosterior(prior, 50, 50, 0.95)
	assert.LessOrEqualf(t, scaled.Variance, base.Variance, "proportional scaling of evidence must not increase variance")
}

func TestComputePosteriorDeterministic(t *testing.T) {
	prior := DefaultPrior()
	a := ComputePosterior(prior, 7, 3, 0.95)
	b := ComputePosterior(prior, 7, 3, 0.95)
	require.Equal(t, a, b)
}
