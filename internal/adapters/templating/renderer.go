// Package templating renders the AIO deployment files and persists the
// configuration bundle.
package templating

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
)

// Data is what templates see: {{ .Config.Domain }}, {{ .Secrets.DatabasePassword }}.
type Data struct {
	Config  domain.NcAioConfig
	Secrets domain.NcAioSecrets
}

var funcs = template.FuncMap{
	"quote": strconv.Quote,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
}

// Renderer implements ports.TemplateRenderer with text/template.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render executes the template at src and writes the result to dst.
// Output written to a .yaml or .yml file must parse as YAML.
func (r *Renderer) Render(src, dst string, cfg domain.NcAioConfig, secrets domain.NcAioSecrets) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return &domain.RenderError{Path: src, Err: err}
	}

	tmpl, err := template.New(filepath.Base(src)).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(string(raw))
	if err != nil {
		return &domain.RenderError{Path: src, Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, Data{Config: cfg, Secrets: secrets}); err != nil {
		return &domain.RenderError{Path: src, Err: err}
	}

	if isYAML(dst) {
		var doc any
		if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
			return &domain.RenderError{Path: src, Err: fmt.Errorf("rendered output is not valid YAML: %w", err)}
		}
	}

	if err := writeFile(dst, buf.Bytes()); err != nil {
		return &domain.RenderError{Path: dst, Err: err}
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// writeFile replaces path with data. The parent directory is created and the
// file is only readable by the owner since it may contain secrets.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
