package email

// Config holds email channel configuration. The Postmark tokens are
// optional so development environments can run on the DevSender instead.
// SenderEmail and SupportEmail establish the from and reply-to identity of
// every outbound notification.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}
