// Package scaffold renders registration-ready suite source files for
// the mksuite command.
package scaffold

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/pkg/errors"
)

const (
	DefaultDir     = "selftests"
	DefaultPackage = "selftests"

	DefaultModulePath = "github.com/treetop-labs/selftest"
)

// Params describes one suite file to generate.
type Params struct {
	// Name is the suite name in CamelCase, as given on the command
	// line. It doubles as the Go identifier of the run function.
	Name string

	// Package is the package clause of the generated file.
	Package string

	// Category groups the suite in the registry. Optional.
	Category string

	// ModulePath is the library import path to reference.
	ModulePath string
}

var suiteTemplate = template.Must(template.New("suite").Parse(`package {{.Package}}

import (
	"{{.ModulePath}}/registry"
	"{{.ModulePath}}/suite"
)

func init() {
	registry.MustRegister(suite.Definition{
		Name: "{{.Name}}",
{{- if .Category}}
		Category: "{{.Category}}",
{{- end}}
		Run: run{{.Name}},
	})
}

func run{{.Name}}(s *suite.S) {
	s.Setup(func() {
		// bring up what every subtest needs
	})
	s.TearDown(func() {
		// release it again
	})

	s.Test("does the expected thing", func() {
		s.Expect(true, "replace with a real check")
	})
}
`))

// Render produces the gofmt-ed source for one suite file.
func Render(p Params) ([]byte, error) {
	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	if p.Package == "" {
		p.Package = DefaultPackage
	}
	if p.ModulePath == "" {
		p.ModulePath = DefaultModulePath
	}

	var buf bytes.Buffer
	if err := suiteTemplate.Execute(&buf, p); err != nil {
		return nil, errors.Wrap(err, "rendering suite template")
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "formatting suite source")
	}
	return src, nil
}

// Write renders the suite file into dir, creating the directory when
// it is missing. When the working directory itself is the target, that
// is, its base name equals dir, the file lands right there instead of
// one level deeper. An existing file is never overwritten.
func Write(dir string, p Params) (string, error) {
	src, err := Render(p)
	if err != nil {
		return "", err
	}

	target, err := resolveDir(dir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(target, FileName(p.Name))
	if _, err := os.Stat(path); err == nil {
		return "", errors.Errorf("refusing to overwrite %s", path)
	} else if !os.IsNotExist(err) {
		return "", errors.Wrap(err, "checking target file")
	}

	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", errors.Wrap(err, "writing suite file")
	}
	return path, nil
}

func resolveDir(dir string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "resolving working directory")
	}
	if filepath.Base(cwd) == dir {
		return ".", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating suite directory")
	}
	return dir, nil
}

// PackageForDir derives the package clause for files generated into
// dir: the directory's base name, lowercased, with anything Go would
// reject stripped out. Falls back to DefaultPackage when nothing
// usable remains.
func PackageForDir(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	var b strings.Builder
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	name := b.String()
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		return DefaultPackage
	}
	return name
}

// FileName converts a CamelCase suite name into its on-disk form,
// WalletSync becomes wallet_sync_suite.go.
func FileName(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String() + "_suite.go"
}

func validateName(name string) error {
	if name == "" {
		return errors.New("suite name is required")
	}
	for i, r := range name {
		if i == 0 && !unicode.IsUpper(r) {
			return errors.Errorf("suite name %q must start with an upper-case letter", name)
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return errors.Errorf("suite name %q may only contain letters and digits", name)
		}
	}
	return nil
}
