package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadforge/leadscore-cli/internal/config"
	"github.com/leadforge/leadscore-cli/internal/model"
	"github.com/leadforge/leadscore-cli/internal/similarity"
)

// Scorer evaluates companies against one requirement document. All
// requirement-side derivations (normalized industries, expanded keywords,
// HQ blob) are computed once at construction and shared read-only across
// company evaluations, so scoring is safe to fan out.
type Scorer struct {
	cfg config.ScorerConfig
	sim SimilarityProvider
	log *zap.Logger
	req model.Requirement

	reqIndustries  []string
	reqKeywords    []string
	reqKeywordBlob string
	reqHQText      string
}

// SimilarityProvider is the similarity surface the scorer needs. Both
// methods must be failure-free (degraded values, never errors).
type SimilarityProvider interface {
	Best(ctx context.Context, text string, refs []string) float64
	Pair(ctx context.Context, a, b string) float64
	Prime(ctx context.Context, texts []string)
}

// New creates a Scorer for one requirement. A nil logger falls back to
// zap.NewNop so the engine itself never touches process-global state.
func New(req model.Requirement, sim SimilarityProvider, cfg config.ScorerConfig, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	reqKeywords := ExpandKeywords(req.PreferredKeywords)
	return &Scorer{
		cfg:            cfg,
		sim:            sim,
		log:            log,
		req:            req,
		reqIndustries:  NormalizeAll(req.Industries),
		reqKeywords:    reqKeywords,
		reqKeywordBlob: strings.Join(reqKeywords, " "),
		reqHQText:      Normalize(strings.Join(req.Headquarters, " ")),
	}
}

// Prime warms the similarity cache with the requirement-side texts.
func (s *Scorer) Prime(ctx context.Context) {
	texts := append([]string{}, s.reqIndustries...)
	if s.reqKeywordBlob != "" {
		texts = append(texts, s.reqKeywordBlob)
	}
	s.sim.Prime(ctx, texts)
}

// ScoreCompany computes the full weighted score for one company. It is a
// pure function of the scorer's requirement and the record: every malformed
// or missing field degrades its own sub-score to 0 and nothing else.
func (s *Scorer) ScoreCompany(ctx context.Context, c model.CompanyRecord) model.ScoreResult {
	w := s.cfg
	var reasons []string
	var total float64

	// Industry similarity, adjusted for generic labels and hybrids.
	indText := c.StructuredInfo.Industry.String()
	indNorm := Normalize(indText)
	indSim := s.sim.Best(ctx, indNorm, s.reqIndustries)
	adj := AdjustIndustrySimilarity(indSim, indNorm, w.GenericPenalty, w.HybridBoost)
	industryScore := w.IndustryWeight * adj.Adjusted
	if adj.Adjusted > 0.8 {
		reasons = append(reasons, fmt.Sprintf("Strong industry alignment (%s)", indText))
	} else if adj.Adjusted > 0.5 {
		reasons = append(reasons, fmt.Sprintf("Partial industry similarity (%s)", indText))
	}
	total += industryScore

	// Keywords: blended semantic similarity and exact overlap.
	companyKW := ExtractKeywords(c)
	companyBlob := strings.Join(companyKW, " ")
	var kwSemSim float64
	if companyBlob != "" && s.reqKeywordBlob != "" {
		kwSemSim = s.sim.Pair(ctx, companyBlob, s.reqKeywordBlob)
	}
	overlap := Overlap(companyKW, s.reqKeywords)
	overlapFrac := float64(len(overlap)) / math.Max(1, float64(len(s.reqKeywords)))
	kwScore := w.KeywordsWeight * (0.65*kwSemSim + 0.35*overlapFrac)
	if len(overlap) > 0 {
		reasons = append(reasons, "Keywords matched: "+strings.Join(overlap, ", "))
	} else if kwSemSim > 0.45 {
		reasons = append(reasons, "Semantic keyword similarity detected")
	}
	total += kwScore

	// Headquarters: fuzzy ratio against the concatenated acceptable HQs.
	hqNorm := Normalize(c.StructuredInfo.Headquarters.String())
	var hqSim float64
	if hqNorm != "" && s.reqHQText != "" {
		hqSim = similarity.FuzzyRatio(hqNorm, s.reqHQText)
	}
	hqScore := w.HQWeight * hqSim
	if hqSim > 0.8 {
		reasons = append(reasons, "HQ region matches")
	} else if hqSim > 0.5 {
		reasons = append(reasons, "HQ region partially matches")
	}
	total += hqScore

	// Signals, dampened toward 50% for industry-irrelevant companies.
	// Negative signals stay unscaled: bad news is bad news regardless of fit.
	f := c.FundingSignal
	e := c.ExpansionSignal
	n := c.NegativeSignal
	domainFactor := DomainFactor(adj.Adjusted)
	fundingScore := w.FundingWeight * CalibrateSignal(f) * domainFactor
	expansionScore := w.ExpansionWeight * CalibrateSignal(e) * domainFactor
	negativeScore := w.NegativeWeight * n
	if f >= s.req.MinFundingSignal {
		reasons = append(reasons, "Meets funding threshold")
	}
	if f >= 0.7 {
		reasons = append(reasons, "Strong funding momentum")
	}
	if e >= 0.5 {
		reasons = append(reasons, "Active expansion observed")
	}
	if n >= s.req.MaxNegativeSignal {
		reasons = append(reasons, "High negative sentiment detected")
	}
	total += fundingScore + expansionScore + negativeScore

	// Momentum: derived growth health, also domain-scaled.
	momentum := Momentum(f, e, n) * domainFactor
	momentumScore := w.MomentumWeight * momentum
	if momentum >= 0.6 {
		reasons = append(reasons, "High momentum (growth health)")
	}
	total += momentumScore

	// Hiring requirement.
	var hiringScore float64
	if s.req.HiringRequired {
		if c.Hiring {
			hiringScore = w.HiringWeight
			reasons = append(reasons, "Actively hiring")
		} else {
			hiringScore = -math.Abs(w.HiringWeight) * 0.5
			reasons = append(reasons, "Not hiring (requirement unmet)")
		}
	}
	total += hiringScore

	// Founded-year freshness.
	var fyScore float64
	if year := model.ParseYear(c.StructuredInfo.FoundedYear.String()); year > 0 {
		if s.req.FoundedAfter > 0 && year >= s.req.FoundedAfter {
			fyScore = w.FoundedYearWeight * Freshness(year, s.req.FoundedAfter, w.FoundedHorizon)
			reasons = append(reasons, fmt.Sprintf("Founded recently (%d)", year))
		}
	}
	total += fyScore

	// Employee size: full weight in range, 60% near range, 0 otherwise.
	var empScore float64
	if emp := ParseEmployees(c.StructuredInfo.EmployeesCount.String()); emp > 0 {
		low, high := s.req.EmployeeRange.Low, s.req.EmployeeRange.High
		fe := float64(emp)
		switch {
		case emp >= low && emp <= high:
			empScore = w.EmployeesWeight
			reasons = append(reasons, fmt.Sprintf("Employee size within target (%d)", emp))
		case fe >= float64(low)*0.8 && fe <= float64(high)*1.2:
			empScore = w.EmployeesWeight * 0.6
			reasons = append(reasons, fmt.Sprintf("Employee size near target (%d)", emp))
		}
	}
	total += empScore

	// Irrelevance gate: a company in an unrelated industry cannot rank
	// highly on keywords and signals alone.
	if adj.Adjusted < w.GateThreshold {
		total = math.Min(total, w.GateCap)
	}

	finalScore := math.Max(0, math.Min(100, round2(total)))

	result := model.ScoreResult{
		Company:  c.Company,
		Score:    finalScore,
		FitLabel: model.FitLabelFor(finalScore),
		Breakdown: model.Breakdown{
			Industry:    round3(industryScore),
			Keywords:    round3(kwScore),
			HQ:          round3(hqScore),
			Funding:     round3(fundingScore),
			Expansion:   round3(expansionScore),
			Negative:    round3(negativeScore),
			Momentum:    round3(momentumScore),
			Hiring:      round3(hiringScore),
			FoundedYear: round3(fyScore),
			Employees:   round3(empScore),
			Total:       finalScore,
		},
		Reasons: reasons,
	}

	s.log.Debug("scored company",
		zap.String("company", c.Company),
		zap.Float64("score", finalScore),
		zap.Float64("adj_industry_sim", adj.Adjusted),
		zap.Bool("hybrid", adj.Hybrid),
	)
	return result
}

// Rank scores every company concurrently, sorts descending by score with
// input order as the tie-break, and truncates to topN (0 means no limit).
func (s *Scorer) Rank(ctx context.Context, companies []model.CompanyRecord, topN int) ([]model.ScoreResult, error) {
	results := make([]model.ScoreResult, len(companies))

	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, c := range companies {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.ScoreCompany(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "scoring: rank companies")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}

	s.log.Info("ranking complete",
		zap.Int("companies", len(companies)),
		zap.Int("returned", len(results)),
	)
	return results, nil
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	positive := map[string]float64{
		"industry_weight":     c.IndustryWeight,
		"keywords_weight":     c.KeywordsWeight,
		"hq_weight":           c.HQWeight,
		"funding_weight":      c.FundingWeight,
		"expansion_weight":    c.ExpansionWeight,
		"momentum_weight":     c.MomentumWeight,
		"hiring_weight":       c.HiringWeight,
		"founded_year_weight": c.FoundedYearWeight,
		"employees_weight":    c.EmployeesWeight,
	}
	var sum float64
	for name, w := range positive {
		if w < 0 {
			errs = append(errs, name+" must be >= 0")
		}
		sum += w
	}
	if sum <= 0 {
		errs = append(errs, "positive weight sum must be > 0")
	}
	if c.NegativeWeight > 0 {
		errs = append(errs, "negative_weight must be <= 0")
	}
	if c.GenericPenalty <= 0 || c.GenericPenalty > 1 {
		errs = append(errs, "generic_penalty must be in (0, 1]")
	}
	if c.HybridBoost < 1 {
		errs = append(errs, "hybrid_boost must be >= 1")
	}
	if c.GateThreshold < 0 || c.GateThreshold > 1 {
		errs = append(errs, "gate_threshold must be in [0, 1]")
	}
	if c.GateCap < 0 || c.GateCap > 100 {
		errs = append(errs, "gate_cap must be in [0, 100]")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
