// Package logger builds configured log/slog loggers for the notification
// engine and provides typed attribute helpers for the fields the engine logs
// everywhere: user, tenant, job, channel, event type.
//
// Loggers created here can inject attributes straight from context via
// ContextExtractor functions, which keeps tenant and job ids on every record
// without threading them through call sites.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("notifier"),
//	    logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "job completed", logger.JobID(job.ID), logger.Channel("email"))
package logger
