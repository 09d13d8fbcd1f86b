package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/vela-alloc/binalloc/allocator"
	"github.com/vela-alloc/binalloc/internal/config"
)

func newTestRunner() *runner {
	cfg := config.Default()
	cfg.Threads = 8
	cfg.Iterations = 50
	return &runner{
		alloc:  allocator.New(),
		logger: zap.NewNop(),
		cfg:    cfg,
		cfgCh:  make(chan config.Config, 1),
	}
}

func TestScenarioLinearGrowth(t *testing.T) {
	assert.NoError(t, newTestRunner().scenarioLinearGrowth())
}

func TestScenarioChurnBoundary(t *testing.T) {
	assert.NoError(t, newTestRunner().scenarioChurnBoundary())
}

func TestScenarioMultithread(t *testing.T) {
	assert.NoError(t, newTestRunner().scenarioMultithread())
}

func TestScenarioLargePath(t *testing.T) {
	assert.NoError(t, newTestRunner().scenarioLargePath())
}

func TestScenarioABIRoundtrip(t *testing.T) {
	assert.NoError(t, newTestRunner().scenarioABIRoundtrip())
}

func TestScenarioAlignmentCap(t *testing.T) {
	assert.NoError(t, newTestRunner().scenarioAlignmentCap())
}

func TestRunSkipsUnknownScenarioNames(t *testing.T) {
	r := newTestRunner()
	r.cfg.Scenarios = []string{"alignment_cap", "not_a_real_scenario"}
	assert.NoError(t, r.run())
}
