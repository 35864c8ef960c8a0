package measure

import "context"

// Func wraps fn so each call records a sample under MetricName.
func Func[R any](m *Measurer, fn func() R, opts ...Option) func() R {
	p := m.probe(MetricName, fn, opts)
	return func() R {
		_, r := p.begin(context.Background())
		defer r.abandon()

		result := fn()
		r.end(nil)
		return result
	}
}

// FuncErr wraps fn so each call that returns a nil error records a sample
// under MetricName. The error is returned unchanged.
func FuncErr[R any](m *Measurer, fn func() (R, error), opts ...Option) func() (R, error) {
	p := m.probe(MetricName, fn, opts)
	return func() (R, error) {
		_, r := p.begin(context.Background())
		defer r.abandon()

		result, err := fn()
		r.end(err)
		return result, err
	}
}

func Func1[A, R any](m *Measurer, fn func(A) (R, error), opts ...Option) func(A) (R, error) {
	p := m.probe(MetricName, fn, opts)
	return func(a A) (R, error) {
		_, r := p.begin(context.Background())
		defer r.abandon()

		result, err := fn(a)
		r.end(err)
		return result, err
	}
}

// FuncCtx is FuncErr for functions that take a context. When the Measurer
// has a tracer, fn receives the span's context.
func FuncCtx[R any](m *Measurer, fn func(context.Context) (R, error), opts ...Option) func(context.Context) (R, error) {
	p := m.probe(MetricName, fn, opts)
	return func(ctx context.Context) (R, error) {
		ctx, r := p.begin(ctx)
		defer r.abandon()

		result, err := fn(ctx)
		r.end(err)
		return result, err
	}
}

func Do(m *Measurer, fn func() error, opts ...Option) func() error {
	p := m.probe(MetricName, fn, opts)
	return func() error {
		_, r := p.begin(context.Background())
		defer r.abandon()

		err := fn()
		r.end(err)
		return err
	}
}
