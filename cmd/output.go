package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadforge/leadscore-cli/internal/model"
)

func writeJSON(w io.Writer, results []model.ScoreResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(results), "output: encode json")
}

func writeTable(w io.Writer, results []model.ScoreResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOMPANY\tSCORE\tFIT\tTOP REASON")
	for i, r := range results {
		topReason := ""
		if len(r.Reasons) > 0 {
			topReason = r.Reasons[0]
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%s\n", i+1, r.Company, r.Score, r.FitLabel, topReason)
	}
	return eris.Wrap(tw.Flush(), "output: flush table")
}

func writeCSV(w io.Writer, results []model.ScoreResult) error {
	cw := csv.NewWriter(w)
	header := []string{"rank", "company", "score", "fit_label", "industry", "keywords", "hq", "funding", "expansion", "negative", "momentum", "hiring", "founded_year", "employees", "reasons"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "output: write csv header")
	}
	for i, r := range results {
		b := r.Breakdown
		row := []string{
			strconv.Itoa(i + 1),
			r.Company,
			formatScore(r.Score),
			r.FitLabel,
			formatScore(b.Industry),
			formatScore(b.Keywords),
			formatScore(b.HQ),
			formatScore(b.Funding),
			formatScore(b.Expansion),
			formatScore(b.Negative),
			formatScore(b.Momentum),
			formatScore(b.Hiring),
			formatScore(b.FoundedYear),
			formatScore(b.Employees),
			strings.Join(r.Reasons, "; "),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "output: write csv row for %s", r.Company)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "output: flush csv")
}

func writeXLSX(path string, results []model.ScoreResult) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "output: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Rank", "Company", "Score", "Fit", "Reasons"} {
		header.AddCell().SetString(h)
	}
	for i, r := range results {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(r.Company)
		row.AddCell().SetFloat(r.Score)
		row.AddCell().SetString(r.FitLabel)
		row.AddCell().SetString(strings.Join(r.Reasons, "; "))
	}

	return eris.Wrapf(file.Save(path), "output: save xlsx %s", path)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
