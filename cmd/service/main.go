package main

import (
	"os"

	"receipt-mailer/config"
	"receipt-mailer/internal/logger"
	"receipt-mailer/internal/render"
	"receipt-mailer/internal/roster"
	"receipt-mailer/internal/sender"
	"receipt-mailer/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	excelPath     string
	templatePath  string
	outputDir     string
	configPath    string
	positionsPath string
	emailTmplPath string
	sendFlag      bool
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	rootCmd := &cobra.Command{
		Use:           "receipt-mailer",
		Short:         "Generate PDF receipts from a payment roster and email them to students",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	rootCmd.Flags().StringVar(&excelPath, "excel", "Student Funds List 2026-2027.xlsx", "path to the roster workbook")
	rootCmd.Flags().StringVar(&templatePath, "template", "Receipt Template.pdf", "path to the single-page PDF receipt template")
	rootCmd.Flags().StringVar(&outputDir, "output", "receipts", "directory for generated receipts")
	rootCmd.Flags().StringVar(&configPath, "config", "receipt_config.json", "path to the run config JSON")
	rootCmd.Flags().StringVar(&positionsPath, "positions", "template_positions.json", "path to the field position spec JSON")
	rootCmd.Flags().StringVar(&emailTmplPath, "email-template", "email_template.txt", "path to the plain-text email body template")
	rootCmd.Flags().BoolVar(&sendFlag, "send", false, "actually send emails (default is a dry run)")

	if err := rootCmd.Execute(); err != nil {
		logger.L().Fatal("run failed", zap.Error(err))
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.L()

	cfg, err := config.LoadRun(configPath)
	if err != nil {
		return err
	}
	layout, err := render.LoadLayout(positionsPath)
	if err != nil {
		return err
	}
	body, err := os.ReadFile(emailTmplPath)
	if err != nil {
		return err
	}
	smtpCfg, err := config.LoadSMTP()
	if err != nil {
		return err
	}

	// Load and validate the whole roster before touching any output.
	students, err := roster.Load(excelPath, cfg.Currency)
	if err != nil {
		return err
	}
	log.Info("roster loaded", zap.String("excel", excelPath), zap.Int("students", len(students)))

	composer, err := sender.NewComposer(cfg, string(body))
	if err != nil {
		return err
	}

	svc := service.NewReceiptService(
		render.New(templatePath, cfg, layout),
		composer,
		sender.NewSMTPSender(smtpCfg),
		log,
	)
	return svc.Run(students, outputDir, sendFlag)
}
