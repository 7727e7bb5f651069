package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
}

// force timezone to London because the registry renders dates in UK
// local time, so servers that end up in other regions would shift
// parsed dates off the printed calendar day when going through
// <time.Time>.Year()/Month()/Day()/Hour()/...
func Now() time.Time {
	return time.Now().In(Location)
}
