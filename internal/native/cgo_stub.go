//go:build !(cgo && zzt_native)

package native

// Available reports whether the native library is linked in.
func Available() bool { return false }

func openCGO() (Gateway, error) { return nil, ErrNotLinked }
