package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/services"

	"github.com/spf13/cobra"
)

var (
	runCmd = &cobra.Command{
		Use:     "run",
		Short:   "Run a reconciliation batch over feed folders",
		Long:    ``,
		Example: "recon run -a feeds/argo -n feeds/netunna -c companies.json -o out",
		RunE:    runBatch,
	}
	runCmdArgoDir             = "argo-dir"
	runCmdNetunnaDir          = "netunna-dir"
	runCmdCompanies           = "companies"
	runCmdOut                 = "out"
	runCmdStartDate           = "start-date"
	runCmdEndDate             = "end-date"
	runCmdExcludeMarkedErrors = "exclude-marked-errors"
)

func runBatch(ccmd *cobra.Command, args []string) error {
	argoDir, _ := ccmd.Flags().GetString(runCmdArgoDir)
	netunnaDir, _ := ccmd.Flags().GetString(runCmdNetunnaDir)
	companiesFile, _ := ccmd.Flags().GetString(runCmdCompanies)
	outDir, _ := ccmd.Flags().GetString(runCmdOut)
	startDate, _ := ccmd.Flags().GetString(runCmdStartDate)
	endDate, _ := ccmd.Flags().GetString(runCmdEndDate)
	excludeMarkedErrors, _ := ccmd.Flags().GetBool(runCmdExcludeMarkedErrors)

	companies, err := loadCompanies(companiesFile)
	if err != nil {
		return err
	}

	var argo []models.ArgoSale
	if err := loadFeedDir(argoDir, &argo); err != nil {
		return fmt.Errorf("failed to load ARGO feed: %w", err)
	}
	var netunna []models.NetunnaSettlement
	if err := loadFeedDir(netunnaDir, &netunna); err != nil {
		return fmt.Errorf("failed to load Netunna feed: %w", err)
	}

	runs, skipped, err := services.RunOffline(models.ReconcileRequest{
		Companies: companies,
		StartDate: startDate,
		EndDate:   endDate,
		Argo:      argo,
		Netunna:   netunna,
	}, excludeMarkedErrors)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, run := range runs {
		if err := writeRunOutputs(outDir, run); err != nil {
			return err
		}
		printSummary(ccmd, run)
	}
	for _, skip := range skipped {
		fmt.Fprintf(ccmd.OutOrStdout(), "skipped company %s (%s): %s\n", skip.CompanyID, skip.Origin, skip.Reason)
	}

	return nil
}

func loadCompanies(path string) ([]models.CompanyPair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read companies file: %w", err)
	}
	var companies []models.CompanyPair
	if err := json.Unmarshal(raw, &companies); err != nil {
		return nil, fmt.Errorf("failed to parse companies file: %w", err)
	}
	return companies, nil
}

// loadFeedDir reads every .json file of dir into out, which must be a
// pointer to a slice. Each file holds an array of records; files are read
// in name order so the merged feed is stable.
func loadFeedDir[T any](dir string, out *[]T) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		var batch []T
		if err := json.Unmarshal(raw, &batch); err != nil {
			return fmt.Errorf("file %s: %w", name, err)
		}
		*out = append(*out, batch...)
	}
	return nil
}

func writeRunOutputs(outDir string, run models.CompanyReconResult) error {
	reportRows := make([][]string, 0, len(run.Results))
	for _, result := range run.Results {
		reportRows = append(reportRows, result.ToCSVRow())
	}
	reportFile := filepath.Join(outDir, fmt.Sprintf("conciliacao_%s.csv", run.Company.ArgoID))
	if err := writeCSV(reportFile, models.CSVHeaderMatchResult, reportRows); err != nil {
		return err
	}

	suggestionRows := make([][]string, 0, len(run.Suggestions))
	for _, suggestion := range run.Suggestions {
		suggestionRows = append(suggestionRows, suggestion.ToCSVRow())
	}
	suggestionFile := filepath.Join(outDir, fmt.Sprintf("sugestoes_%s.csv", run.Company.ArgoID))
	return writeCSV(suggestionFile, models.CSVHeaderSuggestion, suggestionRows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func printSummary(ccmd *cobra.Command, run models.CompanyReconResult) {
	fmt.Fprintf(ccmd.OutOrStdout(), "company %s (netunna %s), pad width %d\n",
		run.Company.ArgoID, run.Company.NetunnaID, run.PadWidth)
	for _, row := range run.Summary {
		fmt.Fprintf(ccmd.OutOrStdout(), "  %-14s %5d  %12s\n",
			row.Status, row.Count, row.GrossValue.StringFixed(2))
	}
	fmt.Fprintf(ccmd.OutOrStdout(), "  suggestions: %d, dropped records: %d\n",
		len(run.Suggestions), len(run.Warnings))
}
