// Package export writes figure snapshots to Excel workbooks and reads
// parameter sheets back.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/snapshot"
)

// Sheet names.
const (
	SheetParameters = "Parameters"
	SheetPlots      = "Plots"
	SheetInfo       = "Info"
)

var (
	parameterHeader = []any{"Name", "Value", "Default", "Min", "Max", "Step"}
	plotHeader      = []any{"Kind", "Expressions", "Binding", "Params", "Label", "Color", "LineWidth", "LineStyle", "Samples", "DomainMin", "DomainMax", "Hidden"}
	infoHeader      = []any{"Card", "Segment", "Dynamic", "Text"}
)

// #region write
// WriteWorkbook saves s as an .xlsx file at path with one sheet each for
// parameters, plots and info cards.
func WriteWorkbook(s snapshot.Figure, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetParameters); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, name := range []string{SheetPlots, SheetInfo} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	w := &sheetWriter{f: f}
	w.row(SheetParameters, 1, parameterHeader)
	for i, p := range s.Params {
		w.row(SheetParameters, i+2, []any{p.Name, p.Value, p.Default, p.Min, p.Max, p.Step})
	}

	w.row(SheetPlots, 1, plotHeader)
	for i, pl := range s.Plots {
		exprs := make([]string, len(pl.Exprs))
		for j, e := range pl.Exprs {
			exprs[j] = e.String()
		}
		st := pl.Style
		w.row(SheetPlots, i+2, []any{
			string(pl.Kind), strings.Join(exprs, "; "), pl.Binding.String(), strings.Join(pl.Params, ", "),
			st.Label, st.Color, st.LineWidth, st.LineStyle, st.Samples, pl.Domain.Min, pl.Domain.Max, st.Hidden,
		})
	}

	w.row(SheetInfo, 1, infoHeader)
	r := 2
	for i, card := range s.Infos {
		for j, seg := range card.Segments {
			w.row(SheetInfo, r, []any{i + 1, j + 1, seg.Dynamic, seg.Text})
			r++
		}
	}
	if w.err != nil {
		return fmt.Errorf("export: %w", w.err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export save %s: %w", path, err)
	}
	return nil
}

type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) row(sheet string, n int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}
// #endregion write

// #region read
// ReadParameters reads the parameter sheet of a workbook written by
// WriteWorkbook. Each row is validated as a fresh declaration would be.
func ReadParameters(path string) ([]snapshot.Parameter, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetParameters, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SheetParameters, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: missing header", SheetParameters)
	}

	var out []snapshot.Parameter
	for i, row := range rows[1:] {
		line := i + 2
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < len(parameterHeader) {
			return nil, fmt.Errorf("%s row %d: want %d columns, got %d", SheetParameters, line, len(parameterHeader), len(row))
		}
		nums := make([]float64, 5)
		for j := range nums {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %v: %w", SheetParameters, line, parameterHeader[j+1], err)
			}
			nums[j] = v
		}
		name := strings.TrimSpace(row[0])
		vals, err := params.Create(name, params.NewUpdate(
			params.Value(nums[0]), params.Default(nums[1]), params.Min(nums[2]), params.Max(nums[3]), params.Step(nums[4]),
		))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetParameters, line, err)
		}
		out = append(out, snapshot.Parameter{Name: name, Values: vals})
	}
	return out, nil
}

// ApplyParameters declares or updates every parameter in ps on fig. It stops
// at the first rejected row.
func ApplyParameters(fig *figure.Figure, ps []snapshot.Parameter) error {
	for _, p := range ps {
		_, err := fig.Parameter(p.Name,
			params.Min(p.Min), params.Max(p.Max), params.Step(p.Step), params.Default(p.Default), params.Value(p.Value))
		if err != nil {
			return fmt.Errorf("apply %q: %w", p.Name, err)
		}
	}
	return nil
}
// #endregion read
