package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "recon",
	Short: "Offline reconciliation of ARGO and Netunna settlement feeds",
	Long:  ``,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP(runCmdArgoDir, "a", "", "directory with ARGO feed JSON files")
	runCmd.MarkFlagRequired(runCmdArgoDir)
	runCmd.Flags().StringP(runCmdNetunnaDir, "n", "", "directory with Netunna feed JSON files")
	runCmd.MarkFlagRequired(runCmdNetunnaDir)
	runCmd.Flags().StringP(runCmdCompanies, "c", "", "JSON file with the company pair list")
	runCmd.MarkFlagRequired(runCmdCompanies)
	runCmd.Flags().StringP(runCmdOut, "o", "out", "output directory for the CSV reports")
	runCmd.Flags().String(runCmdStartDate, "", "start date filter (YYYY-MM-DD)")
	runCmd.Flags().String(runCmdEndDate, "", "end date filter (YYYY-MM-DD)")
	runCmd.Flags().Bool(runCmdExcludeMarkedErrors, false, "exclude MARK_ERROR records from candidate pools")
}
