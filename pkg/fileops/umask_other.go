//go:build !unix

package fileops

// There is no umask outside unix; permissions come from ACLs instead.
func setUmask(mask int) int {
	return mask
}
