package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/bradenaw/juniper/xslices"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailstate/internal/app"
	"github.com/lu-zhengda/mailstate/internal/domain"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect configured accounts",
	}
	cmd.AddCommand(newAccountListCmd())
	return cmd
}

type jsonAccount struct {
	Type       domain.AccountType `json:"type"`
	Login      string             `json:"login"`
	EntryURL   string             `json:"entryUrl"`
	LocalStore bool               `json:"localStore"`
	Partition  bool               `json:"partition"`
}

// accountRows lists the accounts of the upgraded settings, flagging those
// that own a database partition.
func accountRows(r *app.Report) []jsonAccount {
	return xslices.Map(r.SettingsDoc.Accounts, func(a domain.AccountConfig) jsonAccount {
		_, ok := r.MailDB.Account(a.PK())
		return jsonAccount{
			Type:       a.Type,
			Login:      a.Login,
			EntryURL:   a.EntryURL,
			LocalStore: a.LocalStoreEnabled(),
			Partition:  ok,
		}
	})
}

func newAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			// The listing reflects upgraded settings without persisting them.
			r, err := s.service.DryRun(cmd.Context())
			if err != nil {
				return err
			}
			rows := accountRows(r)

			out := cmd.OutOrStdout()
			if jsonFlag {
				return fprintJSON(out, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No accounts configured.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tLOGIN\tENTRY URL\tLOCAL STORE\tPARTITION")
			for _, a := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Type, a.Login, a.EntryURL, yesNo(a.LocalStore), yesNo(a.Partition))
			}
			return w.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
