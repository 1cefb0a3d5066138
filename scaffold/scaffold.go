// Package scaffold produces new migration script files from named templates.
// Placeholders are delimited tokens (__name__) replaced verbatim; tokens
// without a substitution are left untouched. Scaffolding only builds files,
// it has no interaction with migration execution.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crestfall/migrate/e"
	"github.com/crestfall/migrate/migration"
)

const (
	// DefaultTemplate the template used when none is selected
	DefaultTemplate = "migration"
	// DefaultDir where new migration files are written
	DefaultDir = "db/migrations"
	// DefaultPackage the package name rendered into new migration files
	DefaultPackage = "migrations"

	placeholderDelim = "__"

	ECode010101 = e.Code0101 + "01"
	ECode010102 = e.Code0101 + "02"
	ECode010103 = e.Code0101 + "03"
	ECode010104 = e.Code0101 + "04"
	ECode010105 = e.Code0101 + "05"
	ECode010106 = e.Code0101 + "06"
	ECode010107 = e.Code0101 + "07"
	ECode010108 = e.Code0101 + "08"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Render loads the named template and applies the substitutions
func Render(templateName string, substitutions map[string]string) (content []byte, err error) {
	raw, err := templates.ReadFile(fmt.Sprintf("templates/%s.tmpl", templateName))
	if err != nil {
		return nil, e.W(err, ECode010101,
			fmt.Sprintf("template: %s", templateName))
	}

	return RenderContent(raw, substitutions), nil
}

// RenderContent replaces each __token__ whose token has a substitution with
// its value, verbatim. Unknown placeholders are not an error and stay as is.
func RenderContent(content []byte, substitutions map[string]string) (rendered []byte) {
	s := string(content)
	for token, value := range substitutions {
		s = strings.ReplaceAll(s,
			placeholderDelim+token+placeholderDelim, value)
	}

	return []byte(s)
}

// CreateParam create params. Name is required; the rest default per the
// constants above and Time defaults to the current time.
type CreateParam struct {
	Name          string
	Dir           string
	Package       string
	Template      string
	Substitutions map[string]string
	Time          time.Time
}

// Create builds the identifier and type name for a new migration, renders
// the selected template and writes <dir>/<identifier>.go. It refuses to
// overwrite an existing file.
func Create(p *CreateParam) (path string, err error) {
	if p == nil || p.Name == "" {
		return "", e.N(ECode010102, "a migration name is required")
	}

	t := p.Time
	if t.IsZero() {
		t = time.Now()
	}

	identifier, err := migration.NewIdentifier(p.Name, t)
	if err != nil {
		return "", e.W(err, ECode010103)
	}

	typeName, err := migration.TypeName(identifier)
	if err != nil {
		return "", e.W(err, ECode010104)
	}

	templateName := p.Template
	if templateName == "" {
		templateName = DefaultTemplate
	}

	pkg := p.Package
	if pkg == "" {
		pkg = DefaultPackage
	}

	subs := map[string]string{
		"identifier": identifier,
		"type":       typeName,
		"package":    pkg,
	}
	for token, value := range p.Substitutions {
		if _, ok := subs[token]; !ok {
			subs[token] = value
		}
	}

	content, err := Render(templateName, subs)
	if err != nil {
		return "", e.W(err, ECode010105)
	}

	dir := p.Dir
	if dir == "" {
		dir = DefaultDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", e.W(err, ECode010106, dir)
	}

	path = filepath.Join(dir, identifier+".go")
	if _, err := os.Stat(path); err == nil {
		return "", e.N(ECode010107,
			fmt.Sprintf("file already exists: %s", path))
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", e.W(err, ECode010108, path)
	}

	return path, nil
}
