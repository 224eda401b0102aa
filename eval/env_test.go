package eval

import "testing"

func TestScopeGuardRestoresPreviousBinding(t *testing.T) {
	s := NewScope(nil)
	g1 := s.PutInScope("x", 1)
	g2 := s.PutInScope("x", 2)
	if v, _ := s.Get("x"); v != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
	g2.Close()
	if v, _ := s.Get("x"); v != 1 {
		t.Fatalf("expected restore to 1, got %v", v)
	}
	g1.Close()
	if _, ok := s.Get("x"); ok {
		t.Fatalf("expected binding removed after closing the original guard")
	}
}

func TestScopeLooksUpParentChain(t *testing.T) {
	parent := NewScope(nil)
	parent.PutInScope("y", "hello")
	child := NewScope(parent)
	v, ok := child.Get("y")
	if !ok || v != "hello" {
		t.Fatalf("expected child scope to see parent binding, got %v, %v", v, ok)
	}
}

func TestFuncEvaluatorPropagatesRuntimeError(t *testing.T) {
	env := NewEnv(NewScope(nil))
	term := FuncTerm(func(env *Env) (Value, error) {
		return nil, NewRuntimeError("boom")
	})
	_, err := FuncEvaluator{}.Eval(term, env, env.Backtrace)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("expected a *RuntimeError, got %T", err)
	}
}
