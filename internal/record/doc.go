// Package record implements the recording core of buildtap: encoding one
// intercepted build-tool invocation into a single trace-log line and
// appending it safely to a log shared by many concurrent writers.
//
// RECORD FORMAT:
//
// One line per intercepted invocation:
//
//	<cwd>||<path>||<arg1>||<arg2>||...||<argN>\n
//
// Fields are joined by the fixed two-character delimiter "||". Every
// newline byte inside an argument is replaced by the two-character
// sequence backslash-n so the record stays on one line. That is the only
// escaping rule: the delimiter itself is never escaped, and cwd and path
// are written verbatim. An argument containing a literal "||" therefore
// does not round-trip through ParseLine; the format accepts this
// ambiguity deliberately rather than changing the on-disk layout.
//
// CONCURRENCY:
//
// A build forks many short-lived tool processes in parallel, all
// appending to the same trace log. Each append opens the file with
// O_APPEND, issues exactly one write call for the whole record, and
// closes the handle immediately. Atomicity of a record rests entirely on
// the kernel's append-mode guarantee for a single bounded write; records
// from different processes may interleave in any order, but never within
// one record. Config.FileLock additionally takes an advisory flock around
// the write for file systems where plain O_APPEND is not enough. The
// lock is strictly additive and off unless BUILDTAP_FLOCK=1.
//
// ERRORS:
//
// Every failure in this package is fatal to the invocation being
// recorded: no retry, no fallback location, no partial record. Failures
// are typed InterceptError values (environment, configuration, resource,
// I/O) that bubble up to the process entry point, which prints the
// diagnostic and exits non-zero. Nothing in this package terminates the
// process or reads the environment directly; configuration is resolved
// once by the caller through LoadConfig.
package record
