package driver

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates
var templates embed.FS

// scaffold writes the fixed minimal driver project into dir, pinned to the
// given toolchain. The rendered file tree mirrors templates/, with the
// .tmpl extension stripped.
func scaffold(dir, toolchain string) error {
	data := struct {
		Toolchain  string
		APIVersion string
		BinaryName string
	}{
		Toolchain:  toolchain,
		APIVersion: APIVersion,
		BinaryName: BinaryName,
	}

	return fs.WalkDir(templates, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(path, "templates/")
		target := filepath.Join(dir, strings.TrimSuffix(rel, ".tmpl"))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", filepath.Dir(target), err)
		}

		tmpl, err := template.ParseFS(templates, path)
		if err != nil {
			return fmt.Errorf("cannot parse template %s: %w", path, err)
		}

		out, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("cannot create %s: %w", target, err)
		}
		defer out.Close()

		if err := tmpl.Execute(out, data); err != nil {
			return fmt.Errorf("cannot render %s: %w", target, err)
		}
		return out.Close()
	})
}
