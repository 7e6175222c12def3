package resend

// Config holds Resend credentials and the default sender.
// Field tags match the option keys of the resend service client.
type Config struct {
	APIKey      string `mapstructure:"api_key"`
	SenderEmail string `mapstructure:"sender_email"`
	SenderName  string `mapstructure:"sender_name"`
}
