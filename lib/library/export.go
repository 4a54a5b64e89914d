package library

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"Name", "Library", "Description", "Tags", "Pads", "Generator", "Generator Version",
}

func (r *Record) row() []string {
	return []string{
		r.Name, r.Library, r.Description, r.Tags,
		strconv.Itoa(r.PadCount), r.Generator, r.GeneratorVersion,
	}
}

/*
	Export the library catalog to an excel file
*/
func (l *Library) ExportXLSX(dst string) error {
	records, err := l.All()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetList()[0]

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := rec.row()
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(dst)
}

/*
	Export the library catalog to a CSV file
*/
func (l *Library) ExportCSV(dst string) error {
	records, err := l.All()
	if err != nil {
		return err
	}

	fp, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer fp.Close()

	writer := csv.NewWriter(fp)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(rec.row()); err != nil {
			return err
		}
	}
	writer.Flush()

	return writer.Error()
}
