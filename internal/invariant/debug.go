//go:build imglayout_debug

package invariant

// Debug reports whether failed checks are fatal.
const Debug = true

func fail(msg string) {
	failures.Add(1)
	panic("imglayout: consistency check failed: " + msg)
}
