package providers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/veriflow/veriflow/internal/logger"
	"go.uber.org/zap"
)

// providerError surfaces an error the provider embedded in the token payload
// itself. The message is kept verbatim so callers can show it as-is.
func providerError(tokenResponse map[string]interface{}) error {
	raw, ok := tokenResponse["error"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return errors.New(v)
	default:
		return fmt.Errorf("%v", v)
	}
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logger.Error("Failed to close response body", zap.Error(err))
	}
}
