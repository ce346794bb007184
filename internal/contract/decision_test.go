package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideThresholdBands(t *testing.T) {
	thresholds := DefaultGateThresholds()

	cases := []struct {
		mean, variance, credibleLower float64
		want                          MigrationDecision
	}{
		{0.95, 0.001, 0.85, AutoApprove},
		{0.70, 0.001, 0.60, HumanReview},
		{0.40, 0.001, 0.30, Reject},
		{0.10, 0.001, 0.05, HardReject},
		{0.95, 0.2, 0.85, ConservativeFallback},
	}
	for _, c := range cases {
		p := BayesianPosterior{Mean: c.mean, Variance: c.variance, CredibleLower: c.credibleLower}
		got := Decide(p, thresholds)
		assert.Equalf(t, c.want, got, "Decide(mean=%f, var=%f)", c.mean, c.variance)
	}
}

func TestDecideMonotonicity(t *testing.T) {
	thresholds := DefaultGateThresholds()
	lo := Decide(BayesianPosterior{Mean: 0.3, Variance: 0.001, CredibleLower: 0.2}, thresholds)
	hi := Decide(BayesianPosterior{Mean: 0.95, Variance: 0.001, CredibleLower: 0.85}, thresholds)
	require.LessOrEqualf(t, SeverityRank(hi), SeverityRank(lo), "higher mean must not yield a more conservative decision: lo=%s(%d) hi=%s(%d)", lo, SeverityRank(lo), hi, SeverityRank(hi))
}

func TestExpectedLossDecisionPrefersAcceptWhenConfident(t *testing.T) {
	p := BayesianPosterior{Mean: 0.98}
	result := ExpectedLossDecision(p, "construct-x", DefaultLossPolicy())
	assert.Equal(t, ActionAccept, result.Chosen, "losses %v", result.ExpectedLoss)
}

func TestExpectedLossDecisionPrefersRejectWhenUnconfident(t *testing.T) {
	p := BayesianPosterior{Mean: 0.05}
	result := ExpectedLossDecision(p, "construct-x", DefaultLossPolicy())
	assert.Equal(t, ActionReject, result.Chosen, "losses %v", result.ExpectedLoss)
}
