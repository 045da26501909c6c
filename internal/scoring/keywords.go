package scoring

import (
	"regexp"
	"sort"
	"strings"

	"github.com/leadforge/leadscore-cli/internal/model"
)

// keywordSynonyms expands buyer keywords with terms companies use to
// describe themselves. Keys and values are matched post-normalization.
var keywordSynonyms = map[string][]string{
	"payment":    {"payments", "transaction", "gateway", "upi", "wallet", "billing", "checkout"},
	"digital":    {"online", "virtual", "cloud", "internet", "mobile", "web"},
	"loan":       {"credit", "financing", "borrow", "microloan", "debt", "lending"},
	"credit":     {"card", "debit", "score", "lending", "creditcard"},
	"finance":    {"financial", "fintech", "payments"},
	"food":       {"restaurant", "snack", "cafe", "tea", "beverage", "coffee", "delivery"},
	"technology": {"tech", "software", "digital", "platform", "saas"},
	"delivery":   {"logistics", "shipping", "lastmile"},
}

var wordRe = regexp.MustCompile(`\b[a-z]{3,30}\b`)

// ExpandKeywords normalizes each buyer keyword and unions in its synonyms.
// The result is sorted for deterministic blobs and overlap counts.
func ExpandKeywords(keywords []string) []string {
	set := make(map[string]struct{})
	for _, k := range keywords {
		nk := Normalize(k)
		if nk == "" {
			continue
		}
		set[nk] = struct{}{}
		for _, syn := range keywordSynonyms[nk] {
			if ns := Normalize(syn); ns != "" {
				set[ns] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// ExtractKeywords derives the company-side keyword list: the precomputed
// industry_keywords when the enrichment stage provided them, otherwise
// alphabetic tokens (length >= 3) from description, products, and services.
func ExtractKeywords(c model.CompanyRecord) []string {
	if len(c.IndustryKeywords) > 0 {
		set := make(map[string]struct{}, len(c.IndustryKeywords))
		for _, k := range c.IndustryKeywords {
			if nk := Normalize(k); nk != "" {
				set[nk] = struct{}{}
			}
		}
		return sortedKeys(set)
	}

	parts := []string{
		c.StructuredInfo.Description,
		strings.Join(c.StructuredInfo.Products, " "),
		strings.Join(c.StructuredInfo.Services, " "),
		c.Description,
	}
	return Tokenize(strings.Join(parts, " "))
}

// Tokenize extracts sorted unique normalized alphabetic tokens from text.
func Tokenize(text string) []string {
	set := make(map[string]struct{})
	for _, tok := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if nt := Normalize(tok); nt != "" {
			set[nt] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Overlap returns the sorted intersection of two keyword lists.
func Overlap(companyKW, reqKW []string) []string {
	req := make(map[string]struct{}, len(reqKW))
	for _, k := range reqKW {
		req[k] = struct{}{}
	}
	var out []string
	for _, k := range companyKW {
		if _, ok := req[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
