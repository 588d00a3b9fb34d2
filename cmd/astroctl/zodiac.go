package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/astromusic/astromusic/internal/model"
	"github.com/astromusic/astromusic/internal/zodiac"
)

func newZodiacCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "zodiac [sign]",
		Short: "Show the sign to raag recommendation table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := zodiac.Default()

			var infos []model.ZodiacInfo
			if len(args) == 1 {
				sign, ok := model.ParseSign(args[0])
				if !ok {
					return fmt.Errorf("unknown zodiac sign %q", args[0])
				}
				infos = append(infos, table.Info(sign.String()))
			} else {
				for _, e := range table.Entries() {
					infos = append(infos, model.ZodiacInfo{
						English:       e.Sign.String(),
						Hindi:         e.Hindi,
						SuggestedRaag: e.Raag,
					})
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SIGN\tHINDI\tRAAG")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.English, info.Hindi, info.SuggestedRaag)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
