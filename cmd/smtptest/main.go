package main

import (
	"fmt"
	"os"

	"receipt-mailer/config"

	"github.com/joho/godotenv"
	gopkgmail "gopkg.in/gomail.v2"
)

// Sends a single test message so SMTP credentials can be verified before
// a live --send run: go run ./cmd/smtptest you@example.com
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}
	if len(os.Args) < 2 {
		fmt.Println("usage: smtptest <recipient>")
		os.Exit(2)
	}
	to := os.Args[1]

	cfg, err := config.LoadSMTP()
	if err != nil {
		fmt.Printf("SMTP config error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("SMTP settings:\n")
	fmt.Printf("  Host: %s\n", cfg.Host)
	fmt.Printf("  Port: %d\n", cfg.Port)
	fmt.Printf("  User: %s\n", cfg.Username)

	m := gopkgmail.NewMessage()
	m.SetHeader("From", cfg.Username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "receipt-mailer SMTP test")
	m.SetBody("text/plain", "This is a test message. If you received it, SMTP is configured correctly.")

	d := gopkgmail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	fmt.Println("\nSending test message...")
	if err := d.DialAndSend(m); err != nil {
		fmt.Printf("send failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("test message sent")
}
