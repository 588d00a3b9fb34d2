package main

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/astromusic/astromusic/internal/chart"
	"github.com/astromusic/astromusic/internal/ephemeris"
	"github.com/astromusic/astromusic/internal/handler/dto"
	"github.com/astromusic/astromusic/internal/service"
	"github.com/astromusic/astromusic/internal/zodiac"
)

type deriveFlags struct {
	date, clock, place, timezone string
	lat, lon                     float64
	ephemerisURL, ephemerisKey   string
	timeout                      time.Duration
	strict                       bool
}

func newDeriveCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var f deriveFlags

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a birth chart without storing it",
		Example: "  astroctl derive --date 1990-07-15 --time 06:30 --lat 19.076 --lon 72.8777 \\\n" +
			"    --tz Asia/Kolkata --place Mumbai",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := chart.ModeTolerant
			if f.strict {
				mode = chart.ModeStrict
			}

			log := logger(cmd)
			calc := ephemeris.NewClient(ephemeris.Config{
				BaseURL: f.ephemerisURL,
				APIKey:  f.ephemerisKey,
				Timeout: f.timeout,
			}, log)
			deriver := chart.NewDeriver(calc, zodiac.Default(), log, chart.Options{Mode: mode})

			inputs, err := service.ParseBirthInput(service.BirthInput{
				Date:      f.date,
				Time:      f.clock,
				Latitude:  flagFloat(cmd, "lat", f.lat),
				Longitude: flagFloat(cmd, "lon", f.lon),
				Place:     f.place,
				Timezone:  f.timezone,
			})
			if err != nil {
				return err
			}

			deriv, err := deriver.Derive(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.ToDerivationResponse(deriv))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.date, "date", "", "birth date, YYYY-MM-DD")
	flags.StringVar(&f.clock, "time", "", "birth time, HH:MM")
	flags.Float64Var(&f.lat, "lat", 0, "birth latitude")
	flags.Float64Var(&f.lon, "lon", 0, "birth longitude")
	flags.StringVar(&f.timezone, "tz", "", "IANA timezone of the birth place")
	flags.StringVar(&f.place, "place", "unspecified", "birth place label")
	flags.StringVar(&f.ephemerisURL, "ephemeris-url", envOr("EPHEMERIS_URL", ""), "ephemeris service base URL")
	flags.StringVar(&f.ephemerisKey, "ephemeris-api-key", envOr("EPHEMERIS_API_KEY", ""), "ephemeris service API key")
	flags.DurationVar(&f.timeout, "timeout", 10*time.Second, "ephemeris request timeout")
	flags.BoolVar(&f.strict, "strict", false, "fail instead of printing the fallback chart")
	return cmd
}

// flagFloat returns nil for coordinates the caller did not pass.
func flagFloat(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}
