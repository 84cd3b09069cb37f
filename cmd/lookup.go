package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/campus-tools/results-viewer/internal/dataset"
	"github.com/campus-tools/results-viewer/internal/query"
	"github.com/campus-tools/results-viewer/internal/results"
)

var lookupFormat string

var lookupCmd = &cobra.Command{
	Use:   "lookup <reg-no>",
	Short: "Print a student's results, e.g. lookup 2020/ICT/0001",
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
		return writePayload(cmd.OutOrStdout(), out, lookupFormat)
	},
}

// cliService loads the configured workbook once for a single command.
func cliService() (*query.Service, error) {
	if err := cfg.Validate("lookup"); err != nil {
		return nil, err
	}
	policy, err := cfg.Results.Policy()
	if err != nil {
		return nil, err
	}
	src, err := dataset.LoadStatic(dataset.OptionsFromPolicy(cfg.Workbook.Path, policy))
	if err != nil {
		return nil, err
	}
	return query.NewService(src, policy), nil
}

func describeLookupError(regNo string, err error) error {
	switch {
	case eris.Is(err, query.ErrInvalidFormat):
		return eris.Errorf("%q is not a registration number like 2020/ICT/1234", regNo)
	case eris.Is(err, results.ErrNotFound):
		return eris.Errorf("no results found for %s", regNo)
	default:
		return err
	}
}

func writePayload(w io.Writer, p *results.Payload, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return eris.Wrap(err, "lookup: encode yaml")
		}
		return enc.Close()
	case "table", "":
		_, err := fmt.Fprint(w, renderPayload(p))
		return err
	default:
		return eris.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupFormat, "format", "f", "table", "output format: table, json, yaml")
	rootCmd.AddCommand(lookupCmd)
}
