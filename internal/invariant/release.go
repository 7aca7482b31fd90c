//go:build !imglayout_debug

package invariant

// Debug reports whether failed checks are fatal.
const Debug = false

func fail(msg string) {
	failures.Add(1)
	loggerPtr.Load().Warn("imglayout: consistency check failed", "detail", msg)
}
