package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/campus-tools/results-viewer/internal/workbook"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "List workbook sheets and how the current preset reads them",
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := cfg.Results.Policy()
		if err != nil {
			return err
		}

		w, err := workbook.Open(cfg.Workbook.Path)
		if err != nil {
			return err
		}
		return writeSheets(cmd.OutOrStdout(), w, policy.SemesterSheetCount)
	},
}

func writeSheets(out io.Writer, w *workbook.Workbook, semesterSheets int) error {
	var rows [][]string
	for i, name := range w.SheetNames() {
		n, err := w.Rows(i)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			name,
			string(workbook.Role(i, semesterSheets)),
			strconv.Itoa(len(n)),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(styleCells).
		Headers("#", "Sheet", "Role", "Rows").
		Rows(rows...)
	_, err := fmt.Fprintln(out, t.Render())
	return err
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
}
