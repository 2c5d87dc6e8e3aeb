package builtins

import (
	"fmt"
	"sort"

	"javasema/pkg/types"
)

// GetStandardInitializers returns all well-known package initializers sorted by priority
func GetStandardInitializers() []Initializer {
	initializers := []Initializer{
		&JavaUtilInitializer{},
		&JavaFunctionInitializer{},
		&JavaLangInitializer{},
		&JavaIOInitializer{},
	}

	// Sort by priority (lower numbers first)
	sort.Slice(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}

// Seed declares every well-known type in env. All headers are declared
// before any member is bound, so stubs may refer to each other freely.
func Seed(env *types.Environment) error {
	ctx := NewTypeContext(env)
	initializers := GetStandardInitializers()
	for _, init := range initializers {
		if err := init.DeclareTypes(ctx); err != nil {
			return fmt.Errorf("declaring %s: %w", init.Name(), err)
		}
	}
	for _, init := range initializers {
		if err := init.InitMembers(ctx); err != nil {
			return fmt.Errorf("initializing %s: %w", init.Name(), err)
		}
	}
	return nil
}

// MustSeed is Seed for callers that control the stub tables, such as tests.
func MustSeed(env *types.Environment) *types.Environment {
	if err := Seed(env); err != nil {
		panic(err)
	}
	return env
}

// NewEnvironment returns a fresh environment with the well-known types seeded.
func NewEnvironment() (*types.Environment, error) {
	env := types.NewEnvironment()
	if err := Seed(env); err != nil {
		return nil, err
	}
	return env, nil
}

// implicitPackages are the packages whose simple names Declare resolves,
// lowest precedence first.
var implicitPackages = []string{"java.lang.annotation", "java.io", "java.util.function", "java.util", "java.lang"}

// Declare adds the types described by stubs to package pkgName of an
// already seeded env. Names resolve against the seeded packages and
// pkgName itself.
func Declare(env *types.Environment, pkgName string, stubs ...Stub) error {
	ctx := NewTypeContext(env)
	for _, name := range append(implicitPackages, pkgName) {
		if !env.HasPackage(name) {
			continue
		}
		for _, rb := range env.PackageTypes(env.Package(name)) {
			ctx.bySimpleName[rb.Name] = rb
		}
	}
	if err := ctx.declareStubs(pkgName, stubs); err != nil {
		return err
	}
	return ctx.completeStubs(pkgName, stubs)
}

// MustDeclare is Declare for fixed stub tables.
func MustDeclare(env *types.Environment, pkgName string, stubs ...Stub) {
	if err := Declare(env, pkgName, stubs...); err != nil {
		panic(err)
	}
}
