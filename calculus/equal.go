package calculus

// Equal checks if the terms are structurally the same. Terms with parameters
// are compared up to the renaming of the parameters.
func Equal(a, b *Term) bool {
	if a == b {
		return true
	}
	if a.Base() != b.Base() {
		return false
	}

	aParams, bParams := a.Parameters(), b.Parameters()
	if len(aParams) != len(bParams) {
		return false
	}

	if len(aParams) == 0 {
		aArgs, bArgs := a.Arguments(), b.Arguments()
		if len(aArgs) != len(bArgs) {
			return false
		}
		for i := range aArgs {
			if !Equal(aArgs[i], bArgs[i]) {
				return false
			}
		}
		return true
	}

	// rename the parameters of a to the parameters of b
	m := NewMatcher(a.ParameterTerms())
	for i := range aParams {
		if aParams[i].Explicit != bParams[i].Explicit {
			return false
		}
		if !m.Matches(aParams[i].Term, bParams[i].Term) {
			return false
		}
	}
	return m.Matches(a, b)
}
