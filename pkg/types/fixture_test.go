package types

import "testing"

// fixture is a hand-built slice of java.lang/java.util used by the tests in
// this package (the builtins package depends on us, so it can't be used).
type fixture struct {
	env          *Environment
	object       *ReferenceBinding
	serializable *ReferenceBinding
	cloneable    *ReferenceBinding
	comparable   *ReferenceBinding
	number       *ReferenceBinding
	integer      *ReferenceBinding
	long         *ReferenceBinding
	str          *ReferenceBinding
	list         *ReferenceBinding
	arrayList    *ReferenceBinding
	listGet      *MethodBinding
	listAdd      *MethodBinding
}

func define(t *testing.T, env *Environment, pkg, name string, mods Modifiers, vars ...string) *ReferenceBinding {
	t.Helper()
	rb, created := env.DefineType(env.Package(pkg), name, mods)
	if !created {
		t.Fatalf("type %s.%s defined twice", pkg, name)
	}
	if len(vars) > 0 {
		tvs := make([]*TypeVariable, len(vars))
		for i, v := range vars {
			tvs[i] = env.CreateTypeVariable(v)
		}
		rb.SetTypeVariables(tvs)
	}
	return rb
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := NewEnvironment()
	f := &fixture{env: env, object: env.Object()}

	f.serializable = define(t, env, "java.io", "Serializable", Public|Interface)
	f.cloneable = define(t, env, "java.lang", "Cloneable", Public|Interface)
	f.comparable = define(t, env, "java.lang", "Comparable", Public|Interface, "T")

	f.number = define(t, env, "java.lang", "Number", Public|Abstract)
	f.number.SetSupertypes(f.object, []Type{f.serializable})

	f.integer = define(t, env, "java.lang", "Integer", Public|Final)
	f.integer.SetSupertypes(f.number, []Type{env.CreateParameterizedType(f.comparable, []Type{f.integer}, nil)})

	f.long = define(t, env, "java.lang", "Long", Public|Final)
	f.long.SetSupertypes(f.number, []Type{env.CreateParameterizedType(f.comparable, []Type{f.long}, nil)})

	f.str = define(t, env, "java.lang", "String", Public|Final)
	f.str.SetSupertypes(f.object, []Type{f.serializable, env.CreateParameterizedType(f.comparable, []Type{f.str}, nil)})

	f.list = define(t, env, "java.util", "List", Public|Interface, "E")
	e := f.list.TypeVariables[0]
	f.listGet = f.list.AddMethod(&MethodBinding{Selector: "get", Modifiers: Public | Abstract, Parameters: []Type{Int}, ReturnType: e})
	f.listAdd = f.list.AddMethod(&MethodBinding{Selector: "add", Modifiers: Public | Abstract, Parameters: []Type{e}, ReturnType: Boolean})

	f.arrayList = define(t, env, "java.util", "ArrayList", Public, "E")
	ae := f.arrayList.TypeVariables[0]
	f.arrayList.SetSupertypes(f.object, []Type{env.CreateParameterizedType(f.list, []Type{ae}, nil)})
	return f
}

func (f *fixture) listOf(arg Type) *ParameterizedType {
	return f.env.CreateParameterizedType(f.list, []Type{arg}, nil)
}

func (f *fixture) arrayListOf(arg Type) *ParameterizedType {
	return f.env.CreateParameterizedType(f.arrayList, []Type{arg}, nil)
}
