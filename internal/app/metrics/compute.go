package metrics

import (
	"fmt"

	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

func gap(format string, args ...interface{}) error {
	return apperrors.NewDataGapError(fmt.Sprintf(format, args...))
}

// affordabilityRatio = avgNetCost(bracket) / tuition(year)
func affordabilityRatio(snap *store.Snapshot, id int64, year int, bracket string) (float64, error) {
	tuition, ok := snap.Tuition(id, year)
	if !ok {
		return 0, gap("no tuition for institution %d in %d", id, year)
	}
	if tuition == 0 {
		return 0, gap("tuition for institution %d in %d is zero", id, year)
	}
	cost, ok := snap.BracketCost(id, bracket)
	if !ok {
		return 0, gap("no net cost for institution %d bracket %q", id, bracket)
	}
	return float64(cost) / float64(tuition), nil
}

// equityGap = cost(highest present bracket) - cost(lowest present bracket),
// ordered by the caller's list (lowest income first). Repeated labels count once.
func equityGap(snap *store.Snapshot, id int64, order []string) (float64, error) {
	var (
		present      int
		lowest, high float64
	)
	seen := make(map[string]struct{}, len(order))
	for _, label := range order {
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		cost, ok := snap.BracketCost(id, label)
		if !ok {
			continue
		}
		if present == 0 {
			lowest = cost.Float()
		}
		high = cost.Float()
		present++
	}
	if present < 2 {
		return 0, gap("institution %d has %d of the ordered brackets, need 2", id, present)
	}
	return high - lowest, nil
}

// outcomeToCost = latest salary / tuition of the given year.
// year <= 0 selects the most recent tuition year.
func outcomeToCost(snap *store.Snapshot, id int64, year int) (float64, error) {
	salary, ok := snap.LatestSalary(id)
	if !ok {
		return 0, gap("no salary outcome for institution %d", id)
	}
	if year <= 0 {
		years := snap.TuitionYears(id)
		if len(years) == 0 {
			return 0, gap("no tuition for institution %d", id)
		}
		year = years[len(years)-1]
	}
	tuition, ok := snap.Tuition(id, year)
	if !ok {
		return 0, gap("no tuition for institution %d in %d", id, year)
	}
	if tuition == 0 {
		return 0, gap("tuition for institution %d in %d is zero", id, year)
	}
	return float64(salary.MedianSalary) / float64(tuition), nil
}

// diversityWeightedAffordability = affordability ratio * field / 100
func diversityWeightedAffordability(snap *store.Snapshot, id int64, year int, bracket, field string) (float64, error) {
	demographics, ok := snap.Demographics(id, year)
	if !ok {
		return 0, gap("no diversity record for institution %d in %d", id, year)
	}
	weight, ok := demographics[field]
	if !ok {
		return 0, gap("diversity field %q absent for institution %d in %d", field, id, year)
	}
	ratio, err := affordabilityRatio(snap, id, year, bracket)
	if err != nil {
		return 0, err
	}
	return ratio * weight / 100, nil
}

// tuitionChange = tuition(year) - tuition(previous recorded year)
func tuitionChange(snap *store.Snapshot, id int64, year int) (float64, error) {
	current, ok := snap.Tuition(id, year)
	if !ok {
		return 0, gap("no tuition for institution %d in %d", id, year)
	}
	prevYear := 0
	for _, y := range snap.TuitionYears(id) {
		if y < year {
			prevYear = y
		}
	}
	if prevYear == 0 {
		return 0, gap("no tuition before %d for institution %d", year, id)
	}
	prev, _ := snap.Tuition(id, prevYear)
	return current.Float() - prev.Float(), nil
}
