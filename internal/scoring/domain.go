package scoring

import (
	"math"
	"strings"
)

// genericIndustryTerms are technology labels that say nothing about the
// vertical a company actually serves. A bare generic label is down-weighted;
// a generic label combined with a concrete vertical is a hybrid and boosted.
var genericIndustryTerms = map[string]struct{}{
	"technology": {}, "tech": {}, "information technology": {}, "it": {},
	"software": {}, "digital": {}, "platform": {}, "internet": {},
	"online": {}, "saas": {}, "cloud": {}, "it services": {},
}

// domainHints maps concrete verticals to characteristic stems. Matched by
// substring so that "dine" covers "dining" and "med" covers "medical".
// Order matters: the first matching vertical wins.
var domainHints = []struct {
	name  string
	stems []string
}{
	{"food", []string{"food", "restaurant", "cafe", "tea", "coffee", "beverage", "snack", "dine"}},
	{"finance", []string{"finance", "financial", "fintech", "payment", "payments", "loan", "credit", "wallet"}},
	{"education", []string{"education", "edtech", "learning", "school", "tutor"}},
	{"health", []string{"health", "healthcare", "med", "telehealth"}},
}

// DetectDomainHint returns the first concrete vertical whose stems appear in
// the normalized industry text, or "" when none match.
func DetectDomainHint(industryText string) string {
	for _, d := range domainHints {
		for _, stem := range d.stems {
			if strings.Contains(industryText, stem) {
				return d.name
			}
		}
	}
	return ""
}

// hasGenericTerm reports whether normalized industry text carries a generic
// technology label. Single-word terms match whole tokens only ("it" must not
// fire inside "digital"); multi-word terms match by substring.
func hasGenericTerm(industryText string) bool {
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(industryText) {
		tokens[t] = struct{}{}
	}
	for term := range genericIndustryTerms {
		if strings.Contains(term, " ") {
			if strings.Contains(industryText, term) {
				return true
			}
			continue
		}
		if _, ok := tokens[term]; ok {
			return true
		}
	}
	return false
}

// IndustryAdjustment describes how the raw industry similarity was modified.
type IndustryAdjustment struct {
	Adjusted   float64
	Generic    bool
	Hybrid     bool
	DomainHint string
}

// AdjustIndustrySimilarity applies the generic-label penalty and the hybrid
// boost (capped at 1.0) to a raw industry similarity.
func AdjustIndustrySimilarity(sim float64, industryText string, genericPenalty, hybridBoost float64) IndustryAdjustment {
	adj := IndustryAdjustment{Adjusted: sim}
	adj.Generic = hasGenericTerm(industryText)
	adj.DomainHint = DetectDomainHint(industryText)
	adj.Hybrid = adj.Generic && adj.DomainHint != ""

	switch {
	case adj.Hybrid:
		adj.Adjusted = math.Min(1.0, sim*hybridBoost)
	case adj.Generic:
		adj.Adjusted = sim * genericPenalty
	}
	return adj
}

// DomainFactor scales signal contributions by industry relevance: fully
// irrelevant companies keep half their signal weight, never zero, since
// funding news carries some meaning regardless of fit.
func DomainFactor(adjustedSim float64) float64 {
	return 0.5 + 0.5*adjustedSim
}
