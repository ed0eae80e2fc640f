package ways

// Option configures a Translate call. The zero value of options is the
// default configuration; each Option mutates it.
type Option func(*options)

type options struct {
	manifestPath string
}

// WithManifest tells Translate to resolve the input as a TOML manifest
// bundle (internal/parser.LoadBundle) naming DSL fragment files, instead
// of reading the io.Reader passed to Translate directly.
func WithManifest(path string) Option {
	return func(o *options) { o.manifestPath = path }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
