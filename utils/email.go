package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return d.DialAndSend(m)
}

func SendWelcomeEmail(email, name string) {
	go func() {
		subject := "Welcome to FreshBytes!"
		body := fmt.Sprintf(`<h2>Welcome to FreshBytes, %s!</h2>
<p>Thank you for creating your account. You can now:</p>
<ul>
<li>Browse fresh produce from local sellers</li>
<li>Catch promos before they expire</li>
<li>Track your orders from harvest to doorstep</li>
</ul>
<p>Happy shopping!</p>
<p>The FreshBytes Team</p>`, strings.Split(name, " ")[0])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

func SendOrderConfirmationEmail(email, name, orderNumber, total string) {
	go func() {
		subject := fmt.Sprintf("Order %s confirmed", orderNumber)
		body := fmt.Sprintf(`<h2>Thanks for your order, %s!</h2>
<p>Your order <strong>%s</strong> has been received.</p>
<p>Order total: <strong>%s</strong></p>
<p>We'll let you know when it ships.</p>
<p>The FreshBytes Team</p>`, strings.Split(name, " ")[0], orderNumber, total)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send order confirmation to %s: %v", email, err)
		}
	}()
}
