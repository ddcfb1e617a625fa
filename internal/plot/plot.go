// Package plot renders PNG bar charts from the CSV spend history the
// report exports accumulate over time.
package plot

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	chart "github.com/wcharczuk/go-chart/v2"
)

// topGroups caps how many bars a chart carries; smaller spenders are
// dropped, matching the spend reports' focus on the biggest accounts.
const topGroups = 20

// AccountSpend charts total spend per person from an account-based
// spend CSV. Returns the path of the PNG written, which shares the
// CSV's basename.
func AccountSpend(csvPath string) (string, error) {
	return render(csvPath, "person", "AWS spend by account")
}

// OrgSpend charts total spend per project from an org-based spend CSV.
func OrgSpend(csvPath string) (string, error) {
	return render(csvPath, "project", "AWS spend by organizational unit")
}

func render(csvPath, groupColumn, title string) (string, error) {
	groups, err := sumByGroup(csvPath, groupColumn)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "", fmt.Errorf("no rows to plot in %s", csvPath)
	}

	bars := lo.Map(groups, func(g group, _ int) chart.Value {
		return chart.Value{Label: g.name, Value: g.spend}
	})

	graph := chart.BarChart{
		Title:    title,
		Height:   512,
		BarWidth: 40,
		Bars:     bars,
	}

	outPath := strings.TrimSuffix(csvPath, ".csv") + ".png"
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating plot file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("rendering plot: %w", err)
	}
	return outPath, nil
}

type group struct {
	name  string
	spend float64
}

// sumByGroup reads a spend CSV, sums the spend column per value of
// groupColumn, and returns the top spenders sorted descending. The
// spend column holds display-formatted amounts ("$1,234.50"); rounding
// error at chart resolution is irrelevant.
func sumByGroup(csvPath, groupColumn string) ([]group, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("opening spend CSV: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading spend CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	groupCol := lo.IndexOf(header, groupColumn)
	spendCol := lo.IndexOf(header, "spend")
	if groupCol < 0 || spendCol < 0 {
		return nil, fmt.Errorf("spend CSV %s lacks %q or \"spend\" columns", csvPath, groupColumn)
	}

	stripper := strings.NewReplacer("$", "", ",", "")
	sums := make(map[string]float64)
	for _, rec := range records[1:] {
		if len(rec) <= groupCol || len(rec) <= spendCol {
			continue
		}
		spend, err := strconv.ParseFloat(stripper.Replace(rec[spendCol]), 64)
		if err != nil {
			continue
		}
		sums[rec[groupCol]] += spend
	}

	groups := lo.MapToSlice(sums, func(name string, spend float64) group {
		return group{name: name, spend: spend}
	})
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].spend != groups[j].spend {
			return groups[i].spend > groups[j].spend
		}
		return groups[i].name < groups[j].name
	})
	if len(groups) > topGroups {
		groups = groups[:topGroups]
	}
	return groups, nil
}
