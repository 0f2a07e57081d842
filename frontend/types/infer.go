package types

// InferArgs instantiates the declaration called name so that it is
// compatible with target, as needed when a record pattern omits its type
// arguments: with `record Some<T>(T value) implements Option<T>`,
// InferArgs("Some", Option<String>) is Some<String>.
//
// Inference unifies the declaration's view of target's declaration with
// target's own arguments. A target type variable is replaced by its bound
// first. Parameters left unsolved take their declared bound.
// It returns false when the arguments conflict, meaning no instance of the
// declaration can be a value of target.
func (h *Hierarchy) InferArgs(name string, target Type) (*Named, bool) {
	decl, ok := h.decls.Get(name)
	if !ok {
		return nil, false
	}
	target = upper(target)
	targetNamed, _ := target.(*Named)

	if len(decl.Params) == 0 {
		self := &Named{Name: name}
		if targetNamed != nil && !targetNamed.IsRaw() {
			viewed := h.AsSuper(self, targetNamed.Name)
			if viewed != nil && !viewed.IsRaw() && !unifyAll(viewed.Args, targetNamed.Args, nil) {
				return nil, false
			}
		}
		return self, true
	}

	vars := make([]Type, len(decl.Params))
	for i, p := range decl.Params {
		vars[i] = &inferenceVar{index: i, param: p}
	}
	solution := make([]Type, len(vars))
	if targetNamed != nil && !targetNamed.IsRaw() {
		if viewed := h.AsSuper(&Named{Name: name, Args: vars}, targetNamed.Name); viewed != nil {
			if !unifyAll(viewed.Args, targetNamed.Args, solution) {
				return nil, false
			}
		}
	}

	solved := make(map[typeName]Type, len(solution))
	for i, p := range decl.Params {
		if solution[i] != nil {
			solved[p.Name] = solution[i]
		}
	}
	args := make([]Type, len(decl.Params))
	for i, p := range decl.Params {
		if solution[i] != nil {
			args[i] = solution[i]
			continue
		}
		args[i] = subst(p.upperBound(), solved)
	}
	logger.Debug("inferred type arguments", "decl", name, "target", target, "args", args)
	return &Named{Name: name, Args: args}, true
}

func unifyAll(patterns, actuals []Type, solution []Type) bool {
	for i := range actuals {
		if i >= len(patterns) {
			return true
		}
		if !unify(patterns[i], actuals[i], solution) {
			return false
		}
	}
	return true
}

// unify solves the inference variables in pattern so that it equals actual.
// Type variables on either side are treated as compatible with anything,
// as they may be instantiated to any type within their bound.
func unify(pattern, actual Type, solution []Type) bool {
	if v, ok := pattern.(*inferenceVar); ok && solution != nil {
		if existing := solution[v.index]; existing != nil {
			return Identical(existing, actual) || containsVars(existing) || containsVars(actual)
		}
		solution[v.index] = actual
		return true
	}
	if Identical(pattern, actual) {
		return true
	}
	switch actual.(type) {
	case *TypeVar, *inferenceVar:
		return true
	}
	switch p := pattern.(type) {
	case *TypeVar, *inferenceVar:
		return true
	case *Named:
		a, ok := actual.(*Named)
		if !ok || a.Name != p.Name {
			return false
		}
		if p.IsRaw() || a.IsRaw() {
			return true
		}
		return unifyAll(p.Args, a.Args, solution)
	}
	return false
}
