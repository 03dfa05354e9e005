package phaseorder_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/and161185/typestate-monitor/internal/analyzers/phaseorder"
)

func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), phaseorder.Analyzer, "a")
}
