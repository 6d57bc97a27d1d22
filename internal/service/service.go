package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"receipt-mailer/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gopkgmail "gopkg.in/gomail.v2"
)

type Renderer interface {
	Render(s model.StudentPayment, outputPath string) error
}

type Composer interface {
	Compose(s model.StudentPayment, attachmentPath string) (*gopkgmail.Message, error)
}

type Sender interface {
	Send(m *gopkgmail.Message) error
}

// ReceiptService runs the roster sequentially: render the receipt,
// compose the email, then send it or log the dry-run line. The first
// error aborts the remaining rows; earlier sends and written receipts
// stay as they are.
type ReceiptService struct {
	renderer Renderer
	composer Composer
	sender   Sender
	log      *zap.Logger
}

func NewReceiptService(r Renderer, c Composer, s Sender, log *zap.Logger) *ReceiptService {
	return &ReceiptService{renderer: r, composer: c, sender: s, log: log}
}

func (s *ReceiptService) Run(students []model.StudentPayment, outputDir string, send bool) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	runID := uuid.NewString()
	s.log.Info("processing roster",
		zap.String("run_id", runID),
		zap.Int("students", len(students)),
		zap.Bool("send", send),
	)

	for _, st := range students {
		outputPath := filepath.Join(outputDir, OutputFileName(st.Name))
		if err := s.renderer.Render(st, outputPath); err != nil {
			return fmt.Errorf("render receipt %s: %w", st.ReceiptNumber, err)
		}
		m, err := s.composer.Compose(st, outputPath)
		if err != nil {
			return fmt.Errorf("compose email for %s: %w", st.Email, err)
		}
		if !send {
			s.log.Info("prepared email (dry run)",
				zap.String("run_id", runID),
				zap.String("to", st.Email),
				zap.String("receipt", outputPath),
			)
			continue
		}
		if err := s.sender.Send(m); err != nil {
			return fmt.Errorf("send email to %s: %w", st.Email, err)
		}
		s.log.Info("receipt sent",
			zap.String("run_id", runID),
			zap.String("to", st.Email),
			zap.String("receipt_number", st.ReceiptNumber),
		)
	}
	return nil
}

// OutputFileName names the receipt after the student, spaces replaced
// with underscores.
func OutputFileName(studentName string) string {
	return strings.ReplaceAll(studentName, " ", "_") + "_Receipt.pdf"
}
