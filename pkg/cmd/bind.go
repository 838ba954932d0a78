package cmd

// Args maps argument names to bound values: a string for simple and default
// arguments, a []string for a splat. Simple arguments with no token left are
// absent.
type Args map[string]any

// String returns the value bound to a single-token argument.
func (a Args) String(name string) (string, bool) {
	v, ok := a[name].(string)
	return v, ok
}

// Strings returns the tokens collected by a splat argument.
func (a Args) Strings(name string) []string {
	v, _ := a[name].([]string)
	return v
}

// Has reports whether name was bound.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Bind maps tokens onto spec. Each simple or default argument consumes one
// token in order; the splat takes everything left. Binding never fails:
// a shortfall leaves simple arguments absent and default arguments at their
// default, and surplus tokens without a splat are dropped.
func Bind(spec Spec, tokens []string) Args {
	args := make(Args, len(spec.args))
	pos := 0
	for _, a := range spec.args {
		switch a.Kind {
		case KindSplat:
			rest := []string{}
			if pos < len(tokens) {
				rest = append(rest, tokens[pos:]...)
			}
			args[a.Name] = rest
			pos = len(tokens)
		case KindDefault:
			if pos < len(tokens) {
				args[a.Name] = tokens[pos]
				pos++
			} else {
				args[a.Name] = a.Default
			}
		default:
			if pos < len(tokens) {
				args[a.Name] = tokens[pos]
				pos++
			}
		}
	}
	return args
}
