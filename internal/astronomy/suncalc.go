package astronomy

import (
	"context"
	"time"

	"github.com/sixdouglas/suncalc"
)

// SunCalcProvider computes solar times locally with suncalc
type SunCalcProvider struct {
	lat, lon float64
	loc      *time.Location
}

func NewSunCalcProvider(lat, lon float64, loc *time.Location) *SunCalcProvider {
	return &SunCalcProvider{lat: lat, lon: lon, loc: loc}
}

func (p *SunCalcProvider) Fetch(ctx context.Context, date time.Time) (*Times, error) {
	// suncalc works from the instant given; local noon keeps it on the right day
	y, m, d := date.In(p.loc).Date()
	midday := time.Date(y, m, d, 12, 0, 0, 0, p.loc)

	times := suncalc.GetTimes(midday, p.lat, p.lon)

	return timesFromEvents(
		time.Date(y, m, d, 0, 0, 0, 0, p.loc),
		times[suncalc.Sunrise].Value,
		times[suncalc.SolarNoon].Value,
		times[suncalc.Sunset].Value,
		p.loc,
		"suncalc",
	)
}
