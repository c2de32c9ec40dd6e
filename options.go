package searchparams

// Default limits, matching the defaults of PHP's arg_separator.input,
// max_input_nesting_level and max_input_vars.
const (
	DefaultSeparators = "&"
	DefaultMaxDepth   = 64
	DefaultMaxVars    = 1000
)

// An Option configures how query strings are decoded.
type Option func(*options)

type options struct {
	separators string
	maxDepth   int
	maxVars    int
}

func newOptions(opts []Option) options {
	o := options{
		separators: DefaultSeparators,
		maxDepth:   DefaultMaxDepth,
		maxVars:    DefaultMaxVars,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSeparators sets the characters that separate pairs. Each character is
// a separator on its own, so "&;" splits on both & and ;.
// An empty string restores the default.
func WithSeparators(separators string) Option {
	return func(o *options) {
		if separators == "" {
			separators = DefaultSeparators
		}
		o.separators = separators
	}
}

// WithMaxDepth limits the number of subscripts in a name. A variable whose
// name has more subscripts is dropped entirely.
// Zero or a negative value removes the limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithMaxVars limits the number of pairs read from a query string; the rest
// are ignored. Zero or a negative value removes the limit.
func WithMaxVars(n int) Option {
	return func(o *options) {
		o.maxVars = n
	}
}
