// span-table prints the brightness span table for a day, either from
// explicit sunrise and solar noon times or from suncalc for a location.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/saaga0h/daylight-platform/internal/astronomy"
	"github.com/saaga0h/daylight-platform/internal/span"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "span-table: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("span-table", pflag.ContinueOnError)
	sunrise := fs.String("sunrise", "", "Sunrise as HH:MM (default: computed with suncalc)")
	solarNoon := fs.String("solar-noon", "", "Solar noon as HH:MM (default: computed with suncalc)")
	minBrightness := fs.Int("min", 0, "Minimum brightness (percent)")
	maxBrightness := fs.Int("max", 100, "Maximum brightness (percent)")
	lastRay := fs.Bool("last-ray", false, "Append one extra minimum-brightness span")
	at := fs.String("at", "", "Only print the span that applies at HH:MM")
	asJSON := fs.Bool("json", false, "Print the table as a JSON object")
	lat := fs.Float64("latitude", 60.1695, "Latitude for computed sun times")
	lon := fs.Float64("longitude", 24.9354, "Longitude for computed sun times")
	date := fs.String("date", "", "Date as YYYY-MM-DD for computed sun times (default: today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rise, noon, err := sunTimes(*sunrise, *solarNoon, *date, *lat, *lon)
	if err != nil {
		return err
	}

	var opts []span.BuildOption
	if *lastRay {
		opts = append(opts, span.WithLastRay())
	}
	table, err := span.Build(rise, noon, *minBrightness, *maxBrightness, opts...)
	if err != nil {
		return err
	}

	if *at != "" {
		now, err := span.ParseClockTime(*at)
		if err != nil {
			return err
		}
		s, err := table.Lookup(now)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\t%d\n", s.At, s.Brightness)
		return err
	}

	if *asJSON {
		return json.NewEncoder(out).Encode(table)
	}
	for _, s := range table.Spans() {
		if _, err := fmt.Fprintf(out, "%s\t%d\n", s.At, s.Brightness); err != nil {
			return err
		}
	}
	return nil
}

func sunTimes(sunrise, solarNoon, date string, lat, lon float64) (span.ClockTime, span.ClockTime, error) {
	if sunrise != "" && solarNoon != "" {
		rise, err := span.ParseClockTime(sunrise)
		if err != nil {
			return 0, 0, err
		}
		noon, err := span.ParseClockTime(solarNoon)
		return rise, noon, err
	}
	if sunrise != "" || solarNoon != "" {
		return 0, 0, fmt.Errorf("--sunrise and --solar-noon must be given together")
	}

	day := time.Now()
	if date != "" {
		var err error
		if day, err = time.ParseInLocation(time.DateOnly, date, time.Local); err != nil {
			return 0, 0, fmt.Errorf("invalid date: %w", err)
		}
	}

	times, err := astronomy.NewSunCalcProvider(lat, lon, time.Local).Fetch(context.Background(), day)
	if err != nil {
		return 0, 0, err
	}
	return times.Sunrise, times.SolarNoon, nil
}
