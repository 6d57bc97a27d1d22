package service_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"receipt-mailer/internal/model"
	"receipt-mailer/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gopkgmail "gopkg.in/gomail.v2"
)

// Func-field mocks for the service dependencies.

type MockRenderer struct {
	RenderFunc func(s model.StudentPayment, outputPath string) error
	Calls      []string
}

func (m *MockRenderer) Render(s model.StudentPayment, outputPath string) error {
	m.Calls = append(m.Calls, outputPath)
	if m.RenderFunc != nil {
		return m.RenderFunc(s, outputPath)
	}
	return nil
}

type MockComposer struct {
	ComposeFunc func(s model.StudentPayment, attachmentPath string) (*gopkgmail.Message, error)
	Calls       int
}

func (m *MockComposer) Compose(s model.StudentPayment, attachmentPath string) (*gopkgmail.Message, error) {
	m.Calls++
	if m.ComposeFunc != nil {
		return m.ComposeFunc(s, attachmentPath)
	}
	return gopkgmail.NewMessage(), nil
}

type MockSender struct {
	SendFunc func(m *gopkgmail.Message) error
	Calls    int
}

func (m *MockSender) Send(msg *gopkgmail.Message) error {
	m.Calls++
	if m.SendFunc != nil {
		return m.SendFunc(msg)
	}
	return nil
}

func testStudents() []model.StudentPayment {
	return []model.StudentPayment{
		{Name: "Alice Uwase", Email: "alice@example.com", ReceiptNumber: "R-0002"},
		{Name: "Bob Mugenzi", Email: "bob@example.com", ReceiptNumber: "R-0003"},
	}
}

func TestRunDryRunDoesNotSend(t *testing.T) {
	renderer := &MockRenderer{}
	composer := &MockComposer{}
	mailSender := &MockSender{}
	svc := service.NewReceiptService(renderer, composer, mailSender, zap.NewNop())

	dir := filepath.Join(t.TempDir(), "receipts")
	require.NoError(t, svc.Run(testStudents(), dir, false))

	assert.Equal(t, 0, mailSender.Calls)
	assert.Equal(t, 2, composer.Calls)
	require.Len(t, renderer.Calls, 2)
	assert.Equal(t, filepath.Join(dir, "Alice_Uwase_Receipt.pdf"), renderer.Calls[0])
	assert.Equal(t, filepath.Join(dir, "Bob_Mugenzi_Receipt.pdf"), renderer.Calls[1])

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunSendsWhenEnabled(t *testing.T) {
	renderer := &MockRenderer{}
	composer := &MockComposer{}
	mailSender := &MockSender{}
	svc := service.NewReceiptService(renderer, composer, mailSender, zap.NewNop())

	require.NoError(t, svc.Run(testStudents(), t.TempDir(), true))
	assert.Equal(t, 2, mailSender.Calls)
}

func TestRunRenderErrorAborts(t *testing.T) {
	renderer := &MockRenderer{
		RenderFunc: func(model.StudentPayment, string) error {
			return errors.New("template has no pages")
		},
	}
	composer := &MockComposer{}
	mailSender := &MockSender{}
	svc := service.NewReceiptService(renderer, composer, mailSender, zap.NewNop())

	err := svc.Run(testStudents(), t.TempDir(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render receipt R-0002")
	assert.Len(t, renderer.Calls, 1)
	assert.Equal(t, 0, composer.Calls)
	assert.Equal(t, 0, mailSender.Calls)
}

func TestRunSendErrorAborts(t *testing.T) {
	renderer := &MockRenderer{}
	composer := &MockComposer{}
	mailSender := &MockSender{
		SendFunc: func(*gopkgmail.Message) error {
			return errors.New("smtp: auth failed")
		},
	}
	svc := service.NewReceiptService(renderer, composer, mailSender, zap.NewNop())

	err := svc.Run(testStudents(), t.TempDir(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send email to alice@example.com")
	assert.Equal(t, 1, mailSender.Calls)
	assert.Len(t, renderer.Calls, 1)
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "Alice_Uwase_Receipt.pdf", service.OutputFileName("Alice Uwase"))
	assert.Equal(t, "Jean_Bosco_Mugisha_Receipt.pdf", service.OutputFileName("Jean Bosco Mugisha"))
}
