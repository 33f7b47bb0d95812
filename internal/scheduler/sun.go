package scheduler

import "time"

// SunCalculator resolves the astronomical-event keywords "sunrise" and
// "sunset" to a local clock time for the given day and location, per spec
// §4.8's "pluggable sun-position calculator."
type SunCalculator interface {
	Sunrise(day time.Time, lat, lon float64) time.Time
	Sunset(day time.Time, lat, lon float64) time.Time
}

// approxSunCalculator is a fixed-offset stand-in calculator (sunrise at
// 06:00, sunset at 20:00 local) used when no astronomical library is
// configured; production deployments provide a real SunCalculator wired
// to the configured latitude/longitude.
type approxSunCalculator struct{}

func NewApproxSunCalculator() SunCalculator { return approxSunCalculator{} }

func (approxSunCalculator) Sunrise(day time.Time, lat, lon float64) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 6, 0, 0, 0, day.Location())
}

func (approxSunCalculator) Sunset(day time.Time, lat, lon float64) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 20, 0, 0, 0, day.Location())
}
