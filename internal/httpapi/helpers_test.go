package httpapi

import (
	"jobboard-engine/internal/logging"

	"go.uber.org/zap"
)

func nopLog() *zap.SugaredLogger { return logging.Nop() }
