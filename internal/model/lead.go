// Package model defines the typed records exchanged between the enrichment
// stage, the scoring engine, and downstream consumers.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DefaultEmployeeHigh is the upper employee bound used when a requirement
// omits employee_range.
const DefaultEmployeeHigh = 99_999_999

// FlexString decodes a JSON value that may arrive as a string, a number, or
// a list (the first non-empty string element is taken). Enrichment output is
// heterogeneous; any shape this type cannot represent decodes to "".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*f = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(strings.TrimSpace(s))
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			*f = ""
			return nil
		}
		for _, item := range items {
			var elem FlexString
			if err := elem.UnmarshalJSON(item); err == nil && elem != "" {
				*f = elem
				return nil
			}
		}
		*f = ""
	case '{':
		*f = ""
	default:
		// Bare number or boolean.
		*f = FlexString(strings.Trim(trimmed, `"`))
	}
	return nil
}

// String returns the underlying text.
func (f FlexString) String() string { return string(f) }

// StringList decodes a JSON value that may be a single scalar or an array of
// scalars. Non-string scalars are coerced via their literal representation;
// nested objects are skipped.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}
	if trimmed[0] != '[' {
		var single FlexString
		_ = single.UnmarshalJSON(data)
		if single != "" {
			*l = StringList{single.String()}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		var elem FlexString
		_ = elem.UnmarshalJSON(item)
		if elem != "" {
			out = append(out, elem.String())
		}
	}
	*l = out
	return nil
}

// EmployeeRange bounds the acceptable company size. Serialized as a
// two-element JSON array [low, high].
type EmployeeRange struct {
	Low  int
	High int
}

func (r EmployeeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Low, r.High})
}

func (r *EmployeeRange) UnmarshalJSON(data []byte) error {
	var bounds []int
	if err := json.Unmarshal(data, &bounds); err != nil {
		*r = EmployeeRange{Low: 0, High: DefaultEmployeeHigh}
		return nil
	}
	out := EmployeeRange{Low: 0, High: DefaultEmployeeHigh}
	if len(bounds) > 0 {
		out.Low = bounds[0]
	}
	if len(bounds) > 1 {
		out.High = bounds[1]
	}
	*r = out
	return nil
}

// Requirement is the buyer's criteria document, immutable for the duration
// of a scoring run. Missing fields decode to "no constraint" defaults.
type Requirement struct {
	Industries        []string      `json:"industries"`
	PreferredKeywords []string      `json:"preferred_keywords"`
	Headquarters      []string      `json:"headquarters"`
	MinFundingSignal  float64       `json:"min_funding_signal"`
	MaxNegativeSignal float64       `json:"max_negative_signal"`
	HiringRequired    bool          `json:"hiring_required"`
	FoundedAfter      int           `json:"founded_after"`
	EmployeeRange     EmployeeRange `json:"employee_range"`
}

// UnmarshalJSON accepts both the canonical "industries" key and the legacy
// "industry" key written by older enrichment stages, and applies defaults
// for absent thresholds.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var raw struct {
		Industries        StringList     `json:"industries"`
		LegacyIndustries  StringList     `json:"industry"`
		PreferredKeywords StringList     `json:"preferred_keywords"`
		Headquarters      StringList     `json:"headquarters"`
		MinFundingSignal  float64        `json:"min_funding_signal"`
		MaxNegativeSignal *float64       `json:"max_negative_signal"`
		HiringRequired    bool           `json:"hiring_required"`
		FoundedAfter      int            `json:"founded_after"`
		EmployeeRange     *EmployeeRange `json:"employee_range"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	industries := raw.Industries
	if len(industries) == 0 {
		industries = raw.LegacyIndustries
	}

	out := Requirement{
		Industries:        industries,
		PreferredKeywords: raw.PreferredKeywords,
		Headquarters:      raw.Headquarters,
		MinFundingSignal:  raw.MinFundingSignal,
		MaxNegativeSignal: 1.0,
		HiringRequired:    raw.HiringRequired,
		FoundedAfter:      raw.FoundedAfter,
		EmployeeRange:     EmployeeRange{Low: 0, High: DefaultEmployeeHigh},
	}
	if raw.MaxNegativeSignal != nil {
		out.MaxNegativeSignal = *raw.MaxNegativeSignal
	}
	if raw.EmployeeRange != nil {
		out.EmployeeRange = *raw.EmployeeRange
	}

	*r = out
	return nil
}

// StructuredInfo holds the fields the enrichment stage extracted from a
// company's web presence. All scalar fields tolerate heterogeneous shapes.
type StructuredInfo struct {
	Industry       FlexString `json:"industry"`
	Headquarters   FlexString `json:"headquarters"`
	FoundedYear    FlexString `json:"founded_year"`
	EmployeesCount FlexString `json:"employees_count"`
	Description    string     `json:"description"`
	Products       StringList `json:"products,omitempty"`
	Services       StringList `json:"services,omitempty"`
}

// CompanyRecord is one enriched company, consumed read-only by the scorer.
type CompanyRecord struct {
	Company          string         `json:"company"`
	StructuredInfo   StructuredInfo `json:"structured_info"`
	IndustryKeywords StringList     `json:"industry_keywords,omitempty"`
	Description      string         `json:"description,omitempty"`
	FundingSignal    float64        `json:"funding_signal"`
	ExpansionSignal  float64        `json:"expansion_signal"`
	NegativeSignal   float64        `json:"negative_signal"`
	Hiring           bool           `json:"hiring"`
}

// Breakdown is the fixed-order sub-score report for one company. Total
// always equals the final clamped score.
type Breakdown struct {
	Industry    float64 `json:"industry"`
	Keywords    float64 `json:"keywords"`
	HQ          float64 `json:"hq"`
	Funding     float64 `json:"funding"`
	Expansion   float64 `json:"expansion"`
	Negative    float64 `json:"negative"`
	Momentum    float64 `json:"momentum"`
	Hiring      float64 `json:"hiring"`
	FoundedYear float64 `json:"founded_year"`
	Employees   float64 `json:"employees"`
	Total       float64 `json:"total"`
}

// Fit labels bucket the numeric score for human-facing display.
const (
	FitExcellent = "Excellent Match"
	FitModerate  = "Moderate Match"
	FitLow       = "Low Match"
)

// FitLabelFor maps a final score to its display bucket.
func FitLabelFor(score float64) string {
	switch {
	case score >= 75:
		return FitExcellent
	case score >= 45:
		return FitModerate
	default:
		return FitLow
	}
}

// ScoreResult is the scoring output for one company, immutable once produced.
type ScoreResult struct {
	Company   string    `json:"company"`
	Score     float64   `json:"score"`
	FitLabel  string    `json:"fit_label"`
	Breakdown Breakdown `json:"breakdown"`
	Reasons   []string  `json:"reasons"`
}

// ScoreRun is one persisted ranking artifact: a requirement snapshot plus
// the ranked results produced from it.
type ScoreRun struct {
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	Requirement Requirement `json:"requirement"`
	Count       int         `json:"count"`
	ConfigHash  string      `json:"config_hash,omitempty"`
}

// ParseYear extracts a 4-digit year from free text such as "2012" or
// "2012-03". Returns 0 when no leading year is present.
func ParseYear(raw string) int {
	s := strings.TrimSpace(raw)
	if len(s) > 4 {
		s = s[:4]
	}
	y, err := strconv.Atoi(s)
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
