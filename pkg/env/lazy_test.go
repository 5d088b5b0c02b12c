package env

import "testing"

func TestLazyEnvMemoizesAndForcesNeighbour(t *testing.T) {
	var calls int

	e := NewLazyEnv[string, int](nil)

	e.Put("a", func(k string, self *LazyEnv[string, int]) (int, error) {
		calls++

		b, err := self.Get("b")
		if err != nil {
			return 0, err
		}

		return b + 1, nil
	})

	e.Put("b", func(k string, self *LazyEnv[string, int]) (int, error) {
		return 10, nil
	})

	v, err := e.Get("a")
	if err != nil {
		t.Fatalf("Get(a): %v", err)
	}

	if v != 11 {
		t.Fatalf("expected 11, got %d", v)
	}

	if _, err := e.Get("a"); err != nil {
		t.Fatalf("second Get(a): %v", err)
	}

	if calls != 1 {
		t.Fatalf("completer should run once, ran %d times", calls)
	}
}

func TestLazyEnvDetectsCycle(t *testing.T) {
	e := NewLazyEnv[string, int](nil)

	e.Put("a", func(k string, self *LazyEnv[string, int]) (int, error) {
		return self.Get("b")
	})

	e.Put("b", func(k string, self *LazyEnv[string, int]) (int, error) {
		return self.Get("a")
	})

	_, err := e.Get("a")
	if err == nil {
		t.Fatal("expected cycle error")
	}

	if _, ok := IsCycle[string](err); !ok {
		t.Fatalf("expected LazyBindingError, got %T: %v", err, err)
	}
}

func TestLazyEnvFallsBackForUnregisteredKeys(t *testing.T) {
	fallback := NewSimpleEnv(map[string]int{"c": 42})
	e := NewLazyEnv[string, int](fallback)

	v, err := e.Get("c")
	if err != nil {
		t.Fatalf("Get(c): %v", err)
	}

	if v != 42 {
		t.Fatalf("expected 42 from fallback, got %d", v)
	}
}

func TestCompoundEnvTriesTopMostFirst(t *testing.T) {
	top := NewSimpleEnv(map[string]int{"x": 1})
	bottom := NewSimpleEnv(map[string]int{"x": 2, "y": 3})

	c := NewCompoundEnv[string, int](top, bottom)

	if v, _ := c.Get("x"); v != 1 {
		t.Fatalf("expected top-most hit 1, got %d", v)
	}

	if v, _ := c.Get("y"); v != 3 {
		t.Fatalf("expected fallthrough hit 3, got %d", v)
	}

	if _, ok := c.Get("z"); ok {
		t.Fatal("expected miss for unknown key")
	}
}
