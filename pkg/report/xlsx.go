package report

import (
	"strings"

	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/xuri/excelize/v2"

	"OmicsExplore/pkg/dge"
)

const (
	DGEWorkbookFile = "dge_results.xlsx"

	resultSheet = "DGE"
	pairSheet   = "MatchedPairs"
)

func SetRow(xlsx *excelize.File, sheet string, col, row int, value []interface{}) {
	simpleUtil.CheckErr(
		xlsx.SetSheetRow(
			sheet,
			simpleUtil.HandleError(excelize.CoordinatesToCellName(col, row)),
			&value,
		),
	)
}

// NewDGEWorkbook lays out the results sorted by FDR on one sheet and one row
// per matched patient on another.
func NewDGEWorkbook(result *dge.Result) *excelize.File {
	var xlsx = excelize.NewFile()
	simpleUtil.CheckErr(xlsx.SetSheetName("Sheet1", resultSheet))
	simpleUtil.HandleError(xlsx.NewSheet(pairSheet))

	var header = simpleUtil.HandleError(xlsx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}))

	SetRow(xlsx, resultSheet, 1, 1, []interface{}{"gene", "log2fc", "p_value", "fdr", "n_tumor", "n_normal"})
	var records = result.SortedByFDR()
	for i, rec := range records {
		SetRow(xlsx, resultSheet, 1, i+2, []interface{}{rec.Gene, rec.Log2FC, rec.PValue, rec.FDR, rec.NTumor, rec.NNormal})
	}
	simpleUtil.CheckErr(xlsx.SetCellStyle(resultSheet, "A1", "F1", header))
	simpleUtil.CheckErr(xlsx.SetColWidth(resultSheet, "A", "A", 20))
	simpleUtil.CheckErr(xlsx.SetColWidth(resultSheet, "B", "D", 14))
	if len(records) > 0 {
		var last = simpleUtil.HandleError(excelize.CoordinatesToCellName(6, len(records)+1))
		simpleUtil.CheckErr(xlsx.AutoFilter(resultSheet, "A1:"+last, nil))
	}

	SetRow(xlsx, pairSheet, 1, 1, []interface{}{"patient", "tumor", "normal"})
	for i, pair := range result.Pairs() {
		SetRow(xlsx, pairSheet, 1, i+2, []interface{}{
			pair.Patient,
			strings.Join(pair.Tumor, ","),
			strings.Join(pair.Normal, ","),
		})
	}
	simpleUtil.CheckErr(xlsx.SetCellStyle(pairSheet, "A1", "C1", header))
	simpleUtil.CheckErr(xlsx.SetColWidth(pairSheet, "A", "A", 12))
	simpleUtil.CheckErr(xlsx.SetColWidth(pairSheet, "B", "C", 36))

	xlsx.SetActiveSheet(0)
	return xlsx
}

// WriteDGEWorkbook saves NewDGEWorkbook to path.
func WriteDGEWorkbook(result *dge.Result, path string) error {
	var xlsx = NewDGEWorkbook(result)
	defer simpleUtil.DeferClose(xlsx)
	return xlsx.SaveAs(path)
}
