package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// operator accounts for the scanning UI
	AdminUser string `env:"ADMIN_USERNAME"`
	AdminPass string `env:"ADMIN_PASSWORD"`
	StaffUser string `env:"STAFF_USERNAME"`
	StaffPass string `env:"STAFF_PASSWORD"`

	// outbound mail
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" default:"587"`
	SMTPUser string `env:"SMTP_USERNAME"`
	SMTPPass string `env:"SMTP_PASSWORD"`
	MailFrom string `env:"MAIL_FROM"`
}
