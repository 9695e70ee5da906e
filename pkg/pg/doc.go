// Package pg provides the PostgreSQL plumbing shared by the relational
// storages: pool setup with startup retries, goose migrations and a
// readiness probe.
//
// # Usage
//
//	cfg := config.MustLoad[pg.Config]()
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
//
//	prefsStore, err := prefs.NewPostgresStorage(pool)
//
// Error helpers classify driver errors without leaking pgx types into
// callers:
//
//	if pg.IsNotFound(err) { ... }
//	if pg.IsUniqueViolation(err) { ... }
package pg
