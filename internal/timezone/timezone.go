package timezone

import "time"

const DefaultTimezone = "America/Argentina/Buenos_Aires"

// shopFallback stands in for DefaultTimezone on hosts without tzdata.
// Argentina has stayed on UTC-3 without daylight saving since 2009.
var shopFallback = time.FixedZone("-03", -3*60*60)

// Location resolves the shop's zone. An unknown tz yields DefaultTimezone,
// or the fixed UTC-3 zone when that cannot be loaded either; exact is false
// in both cases.
func Location(tz string) (loc *time.Location, exact bool) {
	if l, err := time.LoadLocation(tz); tz != "" && err == nil {
		return l, true
	}
	if l, err := time.LoadLocation(DefaultTimezone); err == nil {
		return l, false
	}
	return shopFallback, false
}
