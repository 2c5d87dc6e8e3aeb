package infer

import (
	"sync"

	"javasema/pkg/types"
)

type variableKey struct {
	param *types.TypeVariable
	site  types.SiteID
	rank  int
}

// VariableTable interns inference variables per (type parameter, call site,
// rank). One table serves one compilation unit; it is safe for concurrent
// use by the workers resolving that unit's call sites.
type VariableTable struct {
	mu   sync.Mutex
	vars map[variableKey]*types.InferenceVariable
}

// NewVariableTable creates an empty table.
func NewVariableTable() *VariableTable {
	return &VariableTable{vars: make(map[variableKey]*types.InferenceVariable)}
}

// Variable returns the inference variable standing for param at site.
func (t *VariableTable) Variable(env *types.Environment, param *types.TypeVariable, site types.SiteID, rank int) *types.InferenceVariable {
	key := variableKey{param, site, rank}
	t.mu.Lock()
	defer t.mu.Unlock()
	if iv, ok := t.vars[key]; ok {
		return iv
	}
	iv := types.NewInferenceVariable(env, param, site, rank)
	t.vars[key] = iv
	return iv
}

// Release drops every variable of site.
func (t *VariableTable) Release(site types.SiteID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.vars {
		if k.site == site {
			delete(t.vars, k)
		}
	}
}

// Len returns the number of interned variables.
func (t *VariableTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.vars)
}

// inferenceSubstitution maps a method's type parameters to inference
// variables and, once solved, inference variables to their instantiations.
type inferenceSubstitution struct {
	params   map[*types.TypeVariable]*types.InferenceVariable
	solution map[*types.InferenceVariable]types.Type
}

func (s *inferenceSubstitution) Substitute(tv *types.TypeVariable) types.Type {
	if iv, ok := s.params[tv]; ok {
		return iv
	}
	return tv
}

func (s *inferenceSubstitution) SubstituteInference(iv *types.InferenceVariable) types.Type {
	if t, ok := s.solution[iv]; ok {
		return t
	}
	return iv
}

func (s *inferenceSubstitution) IsRawSubstitution() bool { return false }

// solutionSubstitution replaces solved inference variables only.
func solutionSubstitution(solution map[*types.InferenceVariable]types.Type) *inferenceSubstitution {
	return &inferenceSubstitution{solution: solution}
}
