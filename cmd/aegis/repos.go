package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

const cliRequestTimeout = 60 * time.Second

var (
	reposEmail  string
	reposQuery  string
	reposRisk   string
	reposAsJSON bool
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List repositories with their latest scan and quality gate.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		risk := scans.ParseRiskFilter(reposRisk)
		if raw := strings.ToLower(strings.TrimSpace(reposRisk)); raw != "" && string(risk) != raw {
			return usageError("--risk must be one of: all, healthy, attention")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cliRequestTimeout)
		defer cancel()

		api, cfg, token, err := signedInClient(ctx, cmd, reposEmail)
		if err != nil {
			return err
		}
		resp, err := api.Scans(ctx, token, cfg.ScanPageLimit, 0)
		if err != nil {
			return err
		}

		groups := scans.FilterRepositories(scans.GroupByRepository(scans.MapScans(resp.Items)), reposQuery, risk)
		if reposAsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(groups)
		}
		return writeRepositoryTable(cmd.OutOrStdout(), groups)
	},
}

func init() {
	reposCmd.Flags().StringVar(&reposEmail, "email", "", "account email; prompts for the password when "+envPassword+" is unset")
	reposCmd.Flags().StringVarP(&reposQuery, "query", "q", "", "filter by repository name")
	reposCmd.Flags().StringVar(&reposRisk, "risk", "", "risk filter: all, healthy, attention")
	reposCmd.Flags().BoolVar(&reposAsJSON, "json", false, "print repositories as JSON")
}

func writeRepositoryTable(w io.Writer, groups []scans.RepositoryGroup) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REPOSITORY\tSCANS\tLATEST\tSTATUS\tGATE\tBRANCH\tCOMMIT")
	for _, group := range groups {
		latest := scans.Scan{}
		if group.Latest != nil {
			latest = *group.Latest
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			group.Name,
			len(group.Scans),
			latest.DisplayTime(),
			orEmpty(string(latest.Status)),
			latest.Gate.Label(),
			orEmpty(latest.Repository.Branch),
			orEmpty(latest.Repository.ShortCommit()),
		)
	}
	return tw.Flush()
}

func orEmpty(s string) string {
	if s == "" {
		return scans.EmptyValue
	}
	return s
}
