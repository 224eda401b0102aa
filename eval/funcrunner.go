package eval

// FuncTerm is a Term implemented directly as a Go closure over an Env.
// It stands in for a compiled expression-language term so that the
// reduction-merging logic in dispatch can be built and tested without a
// full expression runtime, the same way a query merge pipeline can
// compose aggregation steps as plain Go closures rather than an
// interpreted AST.
type FuncTerm func(env *Env) (Value, error)

// FuncEvaluator evaluates FuncTerm values directly. Any other Term type
// is rejected, since a real expression runtime would be the one
// compiling it.
type FuncEvaluator struct{}

func (FuncEvaluator) Eval(term Term, env *Env, bt *Backtrace) (Value, error) {
	fn, ok := term.(FuncTerm)
	if !ok {
		return nil, NewRuntimeError("eval: unsupported term type %T", term)
	}
	v, err := fn(env)
	if err != nil {
		bt.Push("body")
		if re, ok := err.(*RuntimeError); ok {
			re.Backtrace = bt.String()
			return nil, re
		}
		return nil, &RuntimeError{Message: err.Error(), Backtrace: bt.String()}
	}
	return v, nil
}
