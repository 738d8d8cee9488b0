package translator

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lingodoc/lingodoc/internal"
)

// Providers lists the backend names New accepts, in display order.
func Providers() []string {
	return []string{"local", "deepseek", "deepseek-reasoner", "google"}
}

// New builds the backend named by cfg.Provider.
func New(cfg Config, log zerolog.Logger) (Backend, error) {
	switch cfg.Provider {
	case "local", "ollama":
		return newLocalBackend(cfg, log), nil
	case "deepseek", "":
		return newChatBackend(cfg, fastProfile, log), nil
	case "deepseek-reasoner", "reasoner":
		return newChatBackend(cfg, reasonerProfile, log), nil
	case "google":
		return newGoogleBackend(cfg, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", internal.ErrConfig, cfg.Provider)
	}
}
