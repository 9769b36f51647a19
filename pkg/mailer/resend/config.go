package resend

// Config authenticates against the Resend API. SenderEmail and SenderName
// build the default From address for messages that do not set one.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"SENDER_EMAIL"`
	SenderName  string `env:"SENDER_NAME"`
}
