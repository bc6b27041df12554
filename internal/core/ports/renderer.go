package ports

import "github.com/nextcloud/ncp-activation/internal/core/domain"

// TemplateRenderer renders a template file into a target file.
type TemplateRenderer interface {
	Render(src, dst string, cfg domain.NcAioConfig, secrets domain.NcAioSecrets) error
}

// ConfigStore persists the configuration bundle.
type ConfigStore interface {
	Save(path string, cfg domain.NcpConfig) error
}
