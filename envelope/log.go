package envelope

import "github.com/btcsuite/btclog"

// log is the package-level subsystem logger. It defaults to a no-op so
// the package is silent until a caller wires up a real logger via
// UseLogger, following the same convention as every lnd/btcsuite
// subsystem.
var log = btclog.Disabled

// UseLogger sets the subsystem logger used by the envelope package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
