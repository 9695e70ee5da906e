// Package inbox stores and manages in-app notifications with per-user
// capacity enforcement, read tracking, filtered listing, and background
// cleanup of expired and stale records.
//
// Each user holds at most a fixed number of notifications (50 by default).
// When a new notification would exceed the cap, the oldest records are
// evicted in strict insertion order, regardless of read status or priority.
// Eviction happens atomically inside Storage.Create, so concurrent
// creations for the same user never overshoot the cap.
//
// # Basic Usage
//
//	storage := inbox.NewMemoryStorage(inbox.DefaultMaxPerUser)
//	svc := inbox.NewService(storage)
//
//	notif, err := svc.Create(ctx, inbox.Notification{
//		UserID:   "user-123",
//		Type:     notification.EventTaskAssigned,
//		Title:    "New task",
//		Message:  "You were assigned to Q3 planning",
//		Priority: inbox.PriorityHigh,
//	})
//
//	page, err := svc.List(ctx, "user-123", inbox.ListOptions{UnreadOnly: true})
//
// # Persistence
//
// NewPostgresStorage provides a PostgreSQL-backed implementation using the
// same cap semantics. It serializes per-user creation with an advisory
// transaction lock so the count-evict-insert sequence stays atomic under
// concurrency.
//
// # Cleanup
//
// Cleaner periodically removes expired notifications and read notifications
// older than a retention horizon:
//
//	cleaner := inbox.NewCleaner(storage,
//		inbox.WithInterval(time.Hour),
//		inbox.WithReadRetention(30*24*time.Hour),
//	)
//	cleaner.Start(ctx)
//	defer cleaner.Stop()
package inbox
