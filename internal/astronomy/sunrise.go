package astronomy

import (
	"context"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// SunriseProvider computes rise and set with go-sunrise. The library has
// no transit time, so solar noon is taken as the midpoint.
type SunriseProvider struct {
	lat, lon float64
	loc      *time.Location
}

func NewSunriseProvider(lat, lon float64, loc *time.Location) *SunriseProvider {
	return &SunriseProvider{lat: lat, lon: lon, loc: loc}
}

func (p *SunriseProvider) Fetch(ctx context.Context, date time.Time) (*Times, error) {
	y, m, d := date.In(p.loc).Date()

	rise, set := sunrise.SunriseSunset(p.lat, p.lon, y, m, d)
	noon := rise.Add(set.Sub(rise) / 2)

	return timesFromEvents(time.Date(y, m, d, 0, 0, 0, 0, p.loc), rise, noon, set, p.loc, "sunrise")
}
