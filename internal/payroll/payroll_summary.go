package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"agripay/internal/concept"
	"agripay/internal/period"
	payrollerrors "agripay/internal/payroll/errors"
	"agripay/internal/subsidiary"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const summaryCacheTTL = 30 * time.Second

// conceptEntry is one element of a detail row's concept map.
type conceptEntry struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

// staticConceptNames backs the middle step of the display-name fallback
// chain, for concepts that were deleted after the payroll was computed.
var staticConceptNames = map[string]string{
	"BASIC_SALARY":     "Basic Salary",
	"FAMILY_ALLOWANCE": "Family Allowance",
	"OVERTIME_25":      "Overtime 25%",
	"OVERTIME_35":      "Overtime 35%",
	"OVERTIME_100":     "Overtime 100%",
	"NIGHT_SURCHARGE":  "Night Surcharge",
	"PRODUCTION_BONUS": "Production Bonus",
	"AFP_INTEGRA":      "AFP Integra",
	"AFP_PRIMA":        "AFP Prima",
	"AFP_PROFUTURO":    "AFP Profuturo",
	"AFP_HABITAT":      "AFP Habitat",
	"ONP":              "ONP",
	"ESSALUD":          "EsSalud",
	"EPS":              "EPS",
	"CTS":              "CTS",
	"GRATIFICATION":    "Gratification",
}

//go:generate mockgen -source=payroll_summary.go -destination=mock/summary_mock.go -package=mock
type Summarizer interface {
	Summarize(ctx context.Context, companyID, payrollID string) (PayrollSummary, error)
}

type summaryAggregator struct {
	repo         Repository
	subsidiaries subsidiary.Repository
	periods      period.Repository
	concepts     concept.Repository
	cache        *redis.Client
	group        singleflight.Group
	logger       *zap.Logger
}

func NewSummaryAggregator(
	repo Repository,
	subsidiaries subsidiary.Repository,
	periods period.Repository,
	concepts concept.Repository,
	cache *redis.Client,
	logger ...*zap.Logger,
) Summarizer {
	l := zap.L().Named("payroll.summary")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.summary")
	}
	return &summaryAggregator{
		repo:         repo,
		subsidiaries: subsidiaries,
		periods:      periods,
		concepts:     concepts,
		cache:        cache,
		logger:       l,
	}
}

// Summarize recomputes the category-grouped totals of a payroll from
// its detail rows. Results are cached briefly in redis, and concurrent
// recomputations of the same payroll collapse into one.
func (a *summaryAggregator) Summarize(ctx context.Context, companyID, payrollID string) (PayrollSummary, error) {
	cacheKey := fmt.Sprintf("payroll:summary:%s:%s", companyID, payrollID)

	if a.cache != nil {
		if raw, err := a.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached PayrollSummary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	result, err, _ := a.group.Do(cacheKey, func() (any, error) {
		summary, err := a.compute(ctx, companyID, payrollID)
		if err != nil {
			return PayrollSummary{}, err
		}

		if a.cache != nil {
			if raw, err := json.Marshal(summary); err == nil {
				if err := a.cache.Set(ctx, cacheKey, raw, summaryCacheTTL).Err(); err != nil {
					a.logger.Warn("summary cache write failed",
						zap.String("payroll_id", payrollID),
						zap.Error(err),
					)
				}
			}
		}
		return summary, nil
	})
	if err != nil {
		return PayrollSummary{}, err
	}
	return result.(PayrollSummary), nil
}

func (a *summaryAggregator) compute(ctx context.Context, companyID, payrollID string) (PayrollSummary, error) {
	payroll, err := a.repo.FindByIDAndCompany(ctx, companyID, payrollID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollSummary{}, payrollerrors.ErrPayrollNotFound
		}
		return PayrollSummary{}, err
	}

	details, err := a.repo.FindDetails(ctx, companyID, payrollID)
	if err != nil {
		return PayrollSummary{}, err
	}

	subsidiaryName := ""
	if sub, err := a.subsidiaries.FindByIDAndCompany(ctx, companyID, payroll.SubsidiaryID.String()); err == nil {
		subsidiaryName = sub.Name
	} else {
		a.logger.Warn("subsidiary lookup failed, summary keeps an empty name",
			zap.String("payroll_id", payrollID),
			zap.Error(err),
		)
	}

	periodLabel := fmt.Sprintf("%04d-%02d", payroll.Year, payroll.Month)
	if p, err := a.periods.FindByIDAndCompany(ctx, companyID, payroll.PeriodID.String()); err == nil {
		if p.Number > 1 {
			periodLabel = fmt.Sprintf("%s-%d", periodLabel, p.Number)
		}
	} else {
		a.logger.Warn("period lookup failed, falling back to year-month label",
			zap.String("payroll_id", payrollID),
			zap.String("period_id", payroll.PeriodID.String()),
			zap.Error(err),
		)
	}

	// Bucket (category, code) -> cumulative amount across employees,
	// skipping zero entries.
	type bucketKey struct {
		category string
		code     string
	}
	buckets := make(map[bucketKey]decimal.Decimal)
	totalIncome := decimal.Zero
	totalDeductions := decimal.Zero
	totalEmployer := decimal.Zero

	for _, detail := range details {
		totalIncome = totalIncome.Add(detail.TotalIncome)
		totalDeductions = totalDeductions.Add(detail.TotalDeductions)
		totalEmployer = totalEmployer.Add(detail.TotalEmployerContributions)

		if len(detail.Concepts) == 0 {
			continue
		}
		var entries map[string]conceptEntry
		if err := json.Unmarshal(detail.Concepts, &entries); err != nil {
			a.logger.Warn("skipping malformed concept map on detail row",
				zap.String("detail_id", detail.ID.String()),
				zap.Error(err),
			)
			continue
		}
		for code, entry := range entries {
			if entry.Amount.IsZero() {
				continue
			}
			key := bucketKey{category: entry.Category, code: code}
			buckets[key] = buckets[key].Add(entry.Amount)
		}
	}

	// Resolve live concept records once for names and tag sets.
	codes := make([]string, 0, len(buckets))
	seen := make(map[string]bool)
	for key := range buckets {
		if !seen[key.code] {
			seen[key.code] = true
			codes = append(codes, key.code)
		}
	}
	liveConcepts := make(map[string]concept.Concept)
	if len(codes) > 0 {
		found, err := a.concepts.FindByCodes(ctx, companyID, codes)
		if err != nil {
			return PayrollSummary{}, err
		}
		for _, c := range found {
			liveConcepts[c.Code] = c
		}
	}

	totalHealth := decimal.Zero
	totalRetirement := decimal.Zero
	totalRemuneration := decimal.Zero
	totalBonus := decimal.Zero

	var income, deductions, employer []rankedEntry
	for key, amount := range buckets {
		live, known := liveConcepts[key.code]

		if known {
			for _, tag := range concept.ParseTags(live.Tags) {
				switch tag {
				case concept.TagHealth:
					totalHealth = totalHealth.Add(amount.Abs())
				case concept.TagRetirement:
					totalRetirement = totalRetirement.Add(amount.Abs())
				case concept.TagRemuneration:
					totalRemuneration = totalRemuneration.Add(amount.Abs())
				case concept.TagBonus:
					totalBonus = totalBonus.Add(amount.Abs())
				}
			}
		}

		entry := SummaryConceptEntry{
			Code:        key.code,
			DisplayName: displayName(key.code, live, known),
			Category:    key.category,
		}

		switch key.category {
		case concept.CategoryIncome:
			entry.Amount = amount.String()
			if amount.IsPositive() {
				income = append(income, rankedEntry{entry: entry, amount: amount})
			}
		case concept.CategoryEmployerContribution:
			shown := amount.Abs()
			entry.Amount = shown.String()
			if shown.IsPositive() {
				employer = append(employer, rankedEntry{entry: entry, amount: shown})
			}
		default:
			// Deductions, retirement and employee contributions are
			// stored signed; displayed as positive amounts withheld.
			shown := amount.Neg()
			entry.Amount = shown.String()
			if shown.IsPositive() {
				deductions = append(deductions, rankedEntry{entry: entry, amount: shown})
			}
		}
	}

	return PayrollSummary{
		ID:                           payroll.ID.String(),
		Code:                         payroll.Code,
		SubsidiaryName:               subsidiaryName,
		Year:                         payroll.Year,
		Month:                        payroll.Month,
		PeriodLabel:                  periodLabel,
		TotalEmployees:               len(details),
		TotalIncome:                  totalIncome.String(),
		TotalDeductions:              totalDeductions.String(),
		TotalEmployerContributions:   totalEmployer.String(),
		TotalNet:                     totalIncome.Sub(totalDeductions).String(),
		TotalHealth:                  totalHealth.String(),
		TotalRetirement:              totalRetirement.String(),
		TotalRemuneration:            totalRemuneration.String(),
		TotalBonus:                   totalBonus.String(),
		IncomeConcepts:               sortEntries(income),
		DeductionConcepts:            sortEntries(deductions),
		EmployerContributionConcepts: sortEntries(employer),
	}, nil
}

// displayName resolves a human-readable concept name: the live concept
// record first, then the static table, then the code itself Title-Cased.
func displayName(code string, live concept.Concept, known bool) string {
	if known && live.Name != "" {
		return live.Name
	}
	if name, ok := staticConceptNames[code]; ok {
		return name
	}
	words := strings.ToLower(strings.ReplaceAll(code, "_", " "))
	return cases.Title(language.Und).String(words)
}

// rankedEntry carries the decimal alongside the response entry so
// sorting never re-parses the rendered amount.
type rankedEntry struct {
	entry  SummaryConceptEntry
	amount decimal.Decimal
}

func sortEntries(entries []rankedEntry) []SummaryConceptEntry {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].amount.Equal(entries[j].amount) {
			return entries[i].amount.GreaterThan(entries[j].amount)
		}
		return entries[i].entry.Code < entries[j].entry.Code
	})

	out := make([]SummaryConceptEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.entry)
	}
	return out
}
