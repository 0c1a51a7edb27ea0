package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/lu-zhengda/mailstate/internal/app"
	"github.com/lu-zhengda/mailstate/internal/domain"
)

func newUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade stored state to the running app version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.service.Run(cmd.Context())
			if err != nil {
				return err
			}
			if jsonFlag {
				return fprintJSON(cmd.OutOrStdout(), r)
			}
			return printReport(cmd.OutOrStdout(), r)
		},
	}
}

// fetchRate is the effective provider request rate of a config.
type fetchRate struct {
	Unlimited bool    `json:"unlimited"`
	PerSecond float64 `json:"perSecond,omitempty"`
	Burst     int     `json:"burst,omitempty"`
}

type statusOutput struct {
	*app.Report
	FetchRate fetchRate `json:"fetchRate"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what an upgrade would change, without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.service.DryRun(cmd.Context())
			if err != nil {
				return err
			}
			out := statusOutput{Report: r, FetchRate: configFetchRate(r.ConfigDoc)}
			if jsonFlag {
				return fprintJSON(cmd.OutOrStdout(), out)
			}
			if err := printReport(cmd.OutOrStdout(), r); err != nil {
				return err
			}
			if out.FetchRate.Unlimited {
				fmt.Fprintln(cmd.OutOrStdout(), "Fetch rate: unlimited")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Fetch rate: %.2f req/s, burst %d\n", out.FetchRate.PerSecond, out.FetchRate.Burst)
			}
			return nil
		},
	}
}

func configFetchRate(cfg *domain.Config) fetchRate {
	if cfg == nil || cfg.Fetching == nil || cfg.Fetching.RateLimit == nil {
		return fetchRate{Unlimited: true}
	}
	l := cfg.Fetching.RateLimit.Limiter()
	if l.Limit() == rate.Inf {
		return fetchRate{Unlimited: true}
	}
	return fetchRate{PerSecond: float64(l.Limit()), Burst: l.Burst()}
}
