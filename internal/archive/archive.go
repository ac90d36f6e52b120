// Package archive bundles a rendered site into a downloadable zip.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"

	"github.com/kevinmichaelchen/folio/internal/models"
)

const (
	ResumeName       = "resume.pdf"
	InstructionsName = "README.md"
)

// Build writes the résumé, every site file (sorted by name) and the
// instructions into one deflated zip held in memory.
func Build(site models.Site, resume []byte, instructions string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := add(zw, ResumeName, resume); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(site))
	for name := range site {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == ResumeName || name == InstructionsName {
			return nil, fmt.Errorf("site file %q collides with a reserved archive entry", name)
		}
		if err := add(zw, name, []byte(site[name])); err != nil {
			return nil, err
		}
	}

	if err := add(zw, InstructionsName, []byte(instructions)); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

func add(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

const instructionsTemplate = `
# %s's Portfolio

This is a generated portfolio website. To host it on GitHub Pages:

1. Create a new repository named ` + "`%s.github.io`" + ` (if not already existing).
2. Unzip these files into that repository.
3. Commit and push to GitHub.
4. GitHub Pages should automatically serve the site at https://%s.github.io

`

// Instructions returns the README shipped inside the archive.
func Instructions(name, handle string) string {
	return fmt.Sprintf(instructionsTemplate, name, handle, handle)
}
