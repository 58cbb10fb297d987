// Package logging provides a process-wide structured logger for leapdb.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialized once and then retrieved via GetLogger. Operators and the
// buffer manager obtain their loggers through this package so that level and
// destination are controlled from a single place.
//
// # Initialisation
//
// Call Init (or InitDefault) once at program startup:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"}); err != nil {
//	    log.Fatal(err)
//	}
//
// Setting Config.SeqURL additionally ships every record to a Seq server. The
// local handler keeps working if the Seq sink cannot be created.
//
// If GetLogger is called before Init, a default stdout logger is created
// lazily (via sync.Once).
//
// # Context helpers
//
//	log := logging.WithOperator("sort", "orders.amount")
//	log := logging.WithFrame(frameID)
package logging
