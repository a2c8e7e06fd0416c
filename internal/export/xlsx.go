// Package export writes filter results to spreadsheet files for the
// sales team.
package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

var acceptedHeader = []string{"Name", "Category", "Address", "Phone", "Website", "City", "State", "Rating", "Reviews"}

var excludedHeader = []string{"Name", "Address", "Exclusion Reason"}

// WriteXLSX writes a workbook with an Accepted sheet, an Excluded
// sheet, and a Summary sheet.
func WriteXLSX(path string, result model.BatchResult, summary model.Summary) error {
	f := xlsx.NewFile()

	if err := writeAcceptedSheet(f, result.FilteredLeads); err != nil {
		return err
	}
	if err := writeExcludedSheet(f, result.ExcludedBusinesses); err != nil {
		return err
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}

	zap.L().Info("export: workbook written",
		zap.String("path", path),
		zap.Int("accepted", len(result.FilteredLeads)),
		zap.Int("excluded", len(result.ExcludedBusinesses)),
	)
	return nil
}

func writeAcceptedSheet(f *xlsx.File, leads []model.Lead) error {
	sheet, err := f.AddSheet("Accepted")
	if err != nil {
		return eris.Wrap(err, "export: add accepted sheet")
	}

	addStringRow(sheet, acceptedHeader...)
	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.Name)
		row.AddCell().SetString(l.Category)
		row.AddCell().SetString(l.Address)
		row.AddCell().SetString(l.Phone)
		row.AddCell().SetString(l.Website)
		row.AddCell().SetString(l.City)
		row.AddCell().SetString(l.State)
		if l.Rating > 0 {
			row.AddCell().SetFloat(l.Rating)
		} else {
			row.AddCell().SetString("")
		}
		if l.Reviews > 0 {
			row.AddCell().SetInt(l.Reviews)
		} else {
			row.AddCell().SetString("")
		}
	}
	return nil
}

func writeExcludedSheet(f *xlsx.File, excluded []model.Exclusion) error {
	sheet, err := f.AddSheet("Excluded")
	if err != nil {
		return eris.Wrap(err, "export: add excluded sheet")
	}

	addStringRow(sheet, excludedHeader...)
	for _, e := range excluded {
		addStringRow(sheet, e.Name, e.Address, e.Reason)
	}
	return nil
}

func writeSummarySheet(f *xlsx.File, summary model.Summary) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addStringRow(sheet, "Metric", "Value")
	addStringRow(sheet, "Total", fmt.Sprintf("%d", summary.Total))
	addStringRow(sheet, "Included", fmt.Sprintf("%d", summary.Included))
	addStringRow(sheet, "Excluded", fmt.Sprintf("%d", summary.Excluded))
	addStringRow(sheet, "Inclusion rate", fmt.Sprintf("%.1f%%", summary.InclusionRate*100))
	addStringRow(sheet, "Avg confidence", fmt.Sprintf("%.2f", summary.AvgConfidence))
	addStringRow(sheet, "Low confidence", fmt.Sprintf("%d", summary.LowConfidenceCount))
	addStringRow(sheet, "Errors", fmt.Sprintf("%d", summary.ErrorCount))
	addStringRow(sheet, "Rule fallbacks", fmt.Sprintf("%d", summary.FallbackCount))
	return nil
}

func addStringRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
