// Package score aggregates detector findings into the weighted health
// score, grade, confidence label, and the prioritized recommendation list.
package score

import "github.com/calyra/flowaudit/pkg/schema"

// HealthScore applies the penalty formula:
//
//	clamp(100 - Σ count(severity) × weight(severity), 0, 100)
//
// The formula and the severity weights are a compatibility contract with
// score consumers, not an implementation detail.
func HealthScore(summary schema.IssueSummary) int {
	penalty := summary.Critical*schema.SeverityCritical.Weight() +
		summary.High*schema.SeverityHigh.Weight() +
		summary.Medium*schema.SeverityMedium.Weight() +
		summary.Low*schema.SeverityLow.Weight()

	s := 100 - penalty
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// GradeOf buckets a health score.
func GradeOf(score int) schema.Grade {
	switch {
	case score >= 90:
		return schema.GradeExcellent
	case score >= 70:
		return schema.GradeGood
	case score >= 50:
		return schema.GradeNeedsAttention
	case score >= 25:
		return schema.GradeHighRisk
	default:
		return schema.GradeCritical
	}
}

// ConfidenceOf labels analysis coverage. High needs ≥80% coverage on a
// graph of at least 5 nodes; Medium covers ≥50% coverage or small graphs;
// everything else is Low. Zero-node graphs have no coverage at all.
func ConfidenceOf(analyzed, total int) schema.Confidence {
	if total == 0 {
		return schema.ConfidenceLow
	}
	coverage := float64(analyzed) / float64(total)
	if coverage >= 0.8 && total >= 5 {
		return schema.ConfidenceHigh
	}
	if coverage >= 0.5 || total < 5 {
		return schema.ConfidenceMedium
	}
	return schema.ConfidenceLow
}
