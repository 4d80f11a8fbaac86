package helpers

import "io"

// ReadAllAndClose reads at most limit bytes from r and closes it. A
// non-positive limit reads everything.
func ReadAllAndClose(r io.ReadCloser, limit int64) ([]byte, error) {
	defer r.Close()
	if limit <= 0 {
		return io.ReadAll(r)
	}
	return io.ReadAll(io.LimitReader(r, limit))
}
