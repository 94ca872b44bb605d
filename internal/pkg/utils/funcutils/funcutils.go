package funcutils

import (
	log "github.com/sirupsen/logrus"
)

// PanicOrLogOnErr runs f and panics or logs with msg if it returns an error.
// Meant for deferred cleanup calls whose errors must not be silently dropped.
func PanicOrLogOnErr(f func() error, panicOnErr bool, msg string) {
	if err := f(); err != nil {
		if panicOnErr {
			log.WithError(err).Panic(msg)
		}
		log.WithError(err).Warn(msg)
	}
}
