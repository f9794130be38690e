package sandbox

import "os"

// Kind is the kind of filesystem entry a path is expected to be.
type Kind int

const (
	KindAny Kind = iota
	KindFile
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "any"
	}
}

// Matches reports whether info describes an entry of kind k.
func (k Kind) Matches(info os.FileInfo) bool {
	switch k {
	case KindFile:
		return info.Mode().IsRegular()
	case KindDirectory:
		return info.IsDir()
	default:
		return true
	}
}
