// Package display turns filesystem metadata into human-readable values.
package display

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	sizeUnits     = []string{"B", "kB", "MB", "GB", "TB", "PB"}
	sizePrecision = []int{0, 1, 2, 2, 3, 3}
)

// FormatSize renders a byte count with 1024-based units. Each unit has its
// own precision and trailing zeros are dropped: 1024 is "1kB", 1967 is
// "1.9kB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + FormatSize(-bytes)
	}
	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	s := strconv.FormatFloat(value, 'f', sizePrecision[unit], 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s + sizeUnits[unit]
}

// Unix file type bits of st_mode.
const (
	modeTypeMask = 0o170000
	modeSocket   = 0o140000
	modeSymlink  = 0o120000
	modeRegular  = 0o100000
	modeBlock    = 0o060000
	modeDir      = 0o040000
	modeChar     = 0o020000
	modeFIFO     = 0o010000

	modeSetuid = 0o4000
	modeSetgid = 0o2000
	modeSticky = 0o1000
)

// Options for FormatPermissions.
const (
	PermType     = 1
	PermBits     = 2
	PermTypeBits = 3
)

// FormatPermissions renders a raw st_mode value the way ls does. option
// selects the type character only (PermType), the nine permission
// characters only (PermBits) or both (PermTypeBits, also used for any other
// value).
func FormatPermissions(mode uint32, option int) string {
	var b strings.Builder
	if option != PermBits {
		b.WriteByte(typeChar(mode))
	}
	if option == PermType {
		return b.String()
	}

	b.WriteByte(flag(mode&0o400 != 0, 'r'))
	b.WriteByte(flag(mode&0o200 != 0, 'w'))
	b.WriteByte(special(mode&0o100 != 0, mode&modeSetuid != 0, 's'))
	b.WriteByte(flag(mode&0o040 != 0, 'r'))
	b.WriteByte(flag(mode&0o020 != 0, 'w'))
	b.WriteByte(special(mode&0o010 != 0, mode&modeSetgid != 0, 's'))
	b.WriteByte(flag(mode&0o004 != 0, 'r'))
	b.WriteByte(flag(mode&0o002 != 0, 'w'))
	b.WriteByte(special(mode&0o001 != 0, mode&modeSticky != 0, 't'))
	return b.String()
}

func typeChar(mode uint32) byte {
	switch mode & modeTypeMask {
	case modeSocket:
		return 's'
	case modeSymlink:
		return 'l'
	case modeRegular:
		return '-'
	case modeBlock:
		return 'b'
	case modeDir:
		return 'd'
	case modeChar:
		return 'c'
	case modeFIFO:
		return 'p'
	default:
		return 'u'
	}
}

func flag(set bool, c byte) byte {
	if set {
		return c
	}
	return '-'
}

func special(exec, bit bool, c byte) byte {
	switch {
	case bit && exec:
		return c
	case bit:
		return c - 'a' + 'A'
	case exec:
		return 'x'
	default:
		return '-'
	}
}

// UnixMode converts an os.FileMode into the equivalent raw st_mode value.
func UnixMode(m os.FileMode) uint32 {
	mode := uint32(m.Perm())
	switch {
	case m&os.ModeSocket != 0:
		mode |= modeSocket
	case m&os.ModeSymlink != 0:
		mode |= modeSymlink
	case m&os.ModeDevice != 0 && m&os.ModeCharDevice != 0:
		mode |= modeChar
	case m&os.ModeDevice != 0:
		mode |= modeBlock
	case m.IsDir():
		mode |= modeDir
	case m&os.ModeNamedPipe != 0:
		mode |= modeFIFO
	case m.IsRegular():
		mode |= modeRegular
	}
	if m&os.ModeSetuid != 0 {
		mode |= modeSetuid
	}
	if m&os.ModeSetgid != 0 {
		mode |= modeSetgid
	}
	if m&os.ModeSticky != 0 {
		mode |= modeSticky
	}
	return mode
}

// TypeName names the kind of entry described by a raw st_mode value.
func TypeName(mode uint32) string {
	switch mode & modeTypeMask {
	case modeSocket:
		return "socket"
	case modeSymlink:
		return "link"
	case modeRegular:
		return "file"
	case modeBlock:
		return "block"
	case modeDir:
		return "dir"
	case modeChar:
		return "char"
	case modeFIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// FormatTime renders t with a Go time layout. An empty layout yields the
// Unix timestamp in seconds.
func FormatTime(t time.Time, layout string) string {
	if layout == "" {
		return strconv.FormatInt(t.Unix(), 10)
	}
	return t.Format(layout)
}
