package validationcode

import (
	"context"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/observability/logger"
)

// LogSMSSender es el sender de PHONE por defecto: no hay gateway de SMS
// integrado, el code queda en el log para entornos de desarrollo.
// TODO: integrar un gateway SMS real cuando se habilite phone en producción.
type LogSMSSender struct{}

func (LogSMSSender) SendValidationCode(ctx context.Context, to string, code *repository.ValidationCode) error {
	logger.From(ctx).Info("sms validation code (dev sender)",
		logger.String("to", to),
		logger.String("code", code.Code),
	)
	return nil
}
