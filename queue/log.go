package queue

import "github.com/btcsuite/btclog"

// log is the package-level subsystem logger, silent until a caller wires
// one up via UseLogger.
var log = btclog.Disabled

// UseLogger sets the subsystem logger used by the queue package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
