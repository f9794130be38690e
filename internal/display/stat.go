package display

import (
	"os/user"
	"strconv"
	"time"
)

// Stat is the subset of stat(2) data the display helpers work with. Uid and
// Gid are -1 on platforms that do not report them.
type Stat struct {
	Mode  uint32
	Size  int64
	Uid   int
	Gid   int
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
}

// OwnerName looks up the user name for uid, falling back to the number.
func OwnerName(uid int) string {
	if uid < 0 {
		return ""
	}
	id := strconv.Itoa(uid)
	if u, err := user.LookupId(id); err == nil {
		return u.Username
	}
	return id
}

// GroupName looks up the group name for gid, falling back to the number.
func GroupName(gid int) string {
	if gid < 0 {
		return ""
	}
	id := strconv.Itoa(gid)
	if g, err := user.LookupGroupId(id); err == nil {
		return g.Name
	}
	return id
}
