package score

import "github.com/calyra/flowaudit/pkg/schema"

// categoryAdvice maps each issue category to its next-step message.
// Iterated in fixed order so output is deterministic.
var categoryOrder = []string{
	schema.CategoryStructure,
	schema.CategoryErrorHandling,
	schema.CategoryConfiguration,
	schema.CategorySecurity,
	schema.CategoryPerformance,
	schema.CategoryMaintenance,
}

var categoryAdvice = map[string]string{
	schema.CategoryStructure:     "Review the workflow structure: resolve loops, dead branches, and conflicting entry points.",
	schema.CategoryErrorHandling: "Add error handling and fallback paths to actions that can fail.",
	schema.CategoryConfiguration: "Complete the flagged action configurations (URLs, timeouts, retries).",
	schema.CategorySecurity:      "Move hardcoded values and credentials into templated fields or secret references.",
	schema.CategoryPerformance:   "Space out rate-limited actions and review the flagged bottleneck steps.",
	schema.CategoryMaintenance:   "Add descriptions and migrate deprecated API versions to keep the workflow maintainable.",
}

// decompositionThreshold is the node count above which splitting the
// workflow is suggested.
const decompositionThreshold = 30

// mediumVolumeThreshold is the medium-severity count above which a
// volume-based cleanup message is emitted.
const mediumVolumeThreshold = 5

// Recommend derives the deduplicated, priority-ordered next-step list from
// the issue set and graph metadata. Output is deterministic for a fixed
// input.
func Recommend(issues []schema.Issue, meta schema.AnalysisMetadata) []string {
	summary := schema.Summarize(issues)

	var recs []string
	seen := make(map[string]bool)
	add := func(msg string) {
		if msg == "" || seen[msg] {
			return
		}
		seen[msg] = true
		recs = append(recs, msg)
	}

	if summary.Critical > 0 {
		add("Fix the critical issues first: they can stop the workflow or lose data in production.")
	}

	present := make(map[string]bool, len(issues))
	for _, iss := range issues {
		present[iss.Category] = true
	}
	for _, cat := range categoryOrder {
		if present[cat] {
			add(categoryAdvice[cat])
		}
	}

	if summary.Medium > mediumVolumeThreshold {
		add("Schedule a cleanup pass: the volume of medium findings indicates accumulated configuration drift.")
	}

	if meta.IsActive && summary.Total > 0 {
		add("This workflow is live: apply fixes in a draft copy and test before republishing.")
	}

	if meta.TotalNodes > decompositionThreshold {
		add("Consider splitting this workflow into smaller ones; large graphs are hard to reason about and audit.")
	}

	if len(recs) == 0 {
		recs = append(recs, "No action needed. Re-run the analysis after the next workflow change.")
	}
	return recs
}
