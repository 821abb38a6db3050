package record

import "os"

// Recorder performs the full record sequence for intercepted
// invocations: acquire the working directory, encode, append. It holds
// the resolved Config so none of the steps touch the environment.
type Recorder struct {
	// Config is the resolved recording configuration.
	Config Config

	// Getwd supplies the working directory. Nil means os.Getwd; tests
	// inject failures here.
	Getwd func() (string, error)
}

// NewRecorder returns a Recorder for the given configuration.
func NewRecorder(cfg Config) *Recorder {
	return &Recorder{Config: cfg}
}

// Record encodes one intercepted invocation and appends it to the
// trace log. On any failure the typed error is returned before a byte
// is written: a record is appended whole or not at all.
func (r *Recorder) Record(path string, args []string) error {
	getwd := r.Getwd
	if getwd == nil {
		getwd = os.Getwd
	}

	cwd, err := getwd()
	if err != nil {
		return NewEnvironmentError(err)
	}

	rec, err := Encode(cwd, path, args)
	if err != nil {
		return err
	}

	return NewAppender(r.Config).Append(rec)
}

// Intercept records one intercepted invocation, resolving configuration
// from the process environment. This is the one operation the wrapper
// shim calls; everything it can fail with is an InterceptError for the
// caller to turn into a non-zero exit.
func Intercept(path string, args []string) error {
	cfg, err := LoadConfig(os.LookupEnv)
	if err != nil {
		return err
	}
	return NewRecorder(cfg).Record(path, args)
}
