package companieshouse

import (
	"registrylens-backend/lib/restyutil"
	"registrylens-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("registrylens.lib.scrapers.companieshouse")
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput routes full request/response dumps from
// clients created after this call to out.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
