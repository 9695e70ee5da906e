// Package tenant threads the tenant identifier of the triggering event
// through context.Context so that every storage query, queue job, and log
// record stays scoped to a single tenant.
package tenant
