package process

import (
	"fmt"
	"strings"

	"github.com/ncdsv/ncdsv/internal/ast"
	"github.com/ncdsv/ncdsv/internal/module"
)

// Template is the compiled form of one configuration statement: a resolved
// module factory, its raw argument list (still unresolved — resolution
// happens per advance, since variable references name slots by position),
// and the name it exports, if any.
type Template struct {
	ModuleName string
	Factory    module.Factory
	Args       []ast.Arg
	Name       string
}

// BuildTemplate resolves one parsed statement against registry. Module
// lookup failure and malformed arguments are both startup-fatal
// ConfigErrors: a process is never constructed from a config that contains
// one.
func BuildTemplate(registry *module.Registry, stmt ast.Statement) (Template, error) {
	moduleName := strings.Join(stmt.Names, ".")
	factory, err := registry.Lookup(moduleName)
	if err != nil {
		return Template{}, err
	}
	for _, a := range stmt.Args {
		if a.Kind != ast.ArgLiteral && a.Kind != ast.ArgVarRef {
			return Template{}, &module.ConfigError{
				Kind:    module.MalformedArgument,
				Message: fmt.Sprintf("statement %q: argument is neither a literal nor a variable reference", moduleName),
			}
		}
	}
	return Template{
		ModuleName: moduleName,
		Factory:    factory,
		Args:       stmt.Args,
		Name:       stmt.Name,
	}, nil
}

// BuildTemplates resolves every statement in order, stopping at the first
// failure. A partially built slice is returned alongside the error purely
// for callers that want to log which statement failed; callers must not use
// it to construct a Process.
func BuildTemplates(registry *module.Registry, statements []ast.Statement) ([]Template, error) {
	templates := make([]Template, 0, len(statements))
	for _, stmt := range statements {
		t, err := BuildTemplate(registry, stmt)
		if err != nil {
			return templates, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}
