package view

// Future is a Result computed asynchronously. The adapter awaits it before
// writing the response.
type Future struct {
	done     chan struct{}
	res      Result
	err      error
	panicked any
}

func (*Future) isResult() {}

// Go runs fn in a new goroutine and returns a Future for its outcome. A
// panic in fn is re-raised by Await on the awaiting goroutine.
func Go(fn func() (Result, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if p := recover(); p != nil {
				f.panicked = p
			}
		}()
		f.res, f.err = fn()
	}()
	return f
}

// Resolved returns a Future that is already complete.
func Resolved(res Result, err error) *Future {
	f := &Future{done: make(chan struct{}), res: res, err: err}
	close(f.done)
	return f
}

// Await blocks until the Future completes.
func (f *Future) Await() (Result, error) {
	<-f.done
	if f.panicked != nil {
		panic(f.panicked)
	}
	return f.res, f.err
}

// await resolves res until it is no longer a Future.
func await(res Result, err error) (Result, error) {
	for err == nil {
		f, ok := res.(*Future)
		if !ok {
			break
		}
		if f == nil {
			return nil, nil
		}
		res, err = f.Await()
	}
	return res, err
}
