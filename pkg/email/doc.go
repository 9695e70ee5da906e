// Package email sends rendered notification emails through a
// provider-agnostic Sender interface, with Postmark for production and a
// disk-writing DevSender for local development.
//
// Email is the one channel that goes out exclusively through the delivery
// queue: QueueSender adapts any Sender to the queue's per-channel contract
// so dispatch submits jobs instead of calling providers inline.
//
//	client := email.MustNewPostmarkClient(cfg)
//	qs, err := email.NewQueueSender(client)
//	processor.RegisterSender(qs)
//
// Provider rejections fall into two classes: permanent ones (inactive or
// malformed recipient) are wrapped with ErrPermanentFailure and archived
// immediately by the queue; everything else, including timeouts, follows
// the retry path.
package email
