package smtp

// Config holds SMTP provider configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host        string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SenderEmail string `env:"SENDER_EMAIL"`
	Password    string `env:"SENDER_PASSWORD"`
	SenderName  string `env:"SENDER_NAME"`
	Port        int    `env:"SMTP_PORT" envDefault:"587"`
}
