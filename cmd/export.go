package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campus-tools/results-viewer/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <reg-no>",
	Short: "Write a student's results to an XLSX document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := cliService()
		if err != nil {
			return err
		}

		out, err := svc.LookupRegNo(cmd.Context(), args[0])
		if err != nil {
			return describeLookupError(args[0], err)
		}

		path := exportOutput
		if path == "" {
			path = export.Filename(out.RegNo)
		}
		if err := export.SaveXLSX(path, out); err != nil {
			return err
		}

		zap.L().Info("results exported", zap.String("reg_no", out.RegNo), zap.String("path", path))
		cmd.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default results_<reg-no>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
