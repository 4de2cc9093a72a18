/*
Package log provides structured logging for HO Connect using zerolog.

The package holds one global zerolog.Logger that every component derives a
child logger from. Init replaces it according to the configured level and
format; until Init runs, the logger writes JSON to stderr.

# Context Loggers

	log.WithComponent("dispatcher")  // component=dispatcher
	log.WithInstanceID(inst.ID())    // instance_id=...
	log.WithSession(inst.ID(), uid)  // instance_id=... user_id=...

Child loggers can be chained further with zerolog's With():

	logger := log.WithComponent("instance").With().
		Str("instance_id", id).
		Logger()

# Degraded Paths

Nothing in the notification core returns errors to the UI layer. Malformed
signal payloads, unreadable store values and generator failures are logged
at warn level here and then handled as empty results, so the log is the only
place those failures are visible.

# Configuration

	level, err := log.ParseLevel(cfg.Log.Level)
	...
	log.Init(log.Config{
		Level:      level,
		JSONOutput: true,
		Output:     os.Stderr,
	})
*/
package log
