//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package monitoring

// fsUsage is unavailable on this platform.
func fsUsage(string) (totalBytes uint64, freeBytes uint64) {
	return 0, 0
}
