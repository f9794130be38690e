package display

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"disc/pkg/fileops"
)

// DefaultTimeLayout is used for the *Display time fields when no layout is
// given.
const DefaultTimeLayout = time.RFC1123Z

// Info is the full metadata record for one entry. Paths are display paths,
// relative to Root.
type Info struct {
	Path      string `json:"path" yaml:"path"`
	Dirname   string `json:"dirname" yaml:"dirname"`
	Basename  string `json:"basename" yaml:"basename"`
	Extension string `json:"extension" yaml:"extension"`
	Filename  string `json:"filename" yaml:"filename"`
	Type      string `json:"type" yaml:"type"`
	MIMEType  string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`

	Size        int64  `json:"size" yaml:"size"`
	SizeDisplay string `json:"size_display" yaml:"size_display"`

	Mode               uint32 `json:"mode" yaml:"mode"`
	PermissionsDisplay string `json:"permissions_display" yaml:"permissions_display"`
	PermissionsType    string `json:"permissions_t" yaml:"permissions_t"`
	PermissionsBits    string `json:"permissions_ugw" yaml:"permissions_ugw"`

	Uid        int    `json:"uid" yaml:"uid"`
	Gid        int    `json:"gid" yaml:"gid"`
	UidDisplay string `json:"uid_display" yaml:"uid_display"`
	GidDisplay string `json:"gid_display" yaml:"gid_display"`

	Atime        int64  `json:"atime" yaml:"atime"`
	Mtime        int64  `json:"mtime" yaml:"mtime"`
	Ctime        int64  `json:"ctime" yaml:"ctime"`
	AtimeDisplay string `json:"atime_display" yaml:"atime_display"`
	MtimeDisplay string `json:"mtime_display" yaml:"mtime_display"`
	CtimeDisplay string `json:"ctime_display" yaml:"ctime_display"`

	IsDirectory bool `json:"isDirectory" yaml:"isDirectory"`
	IsFile      bool `json:"isFile" yaml:"isFile"`
	IsReadable  bool `json:"isReadable" yaml:"isReadable"`
	IsWritable  bool `json:"isWritable" yaml:"isWritable"`

	Root string `json:"root" yaml:"root"`
}

// NewInfo collects the metadata of the entry at abs. display and
// dirDisplay are the root-relative forms of abs and its parent. An empty
// layout selects DefaultTimeLayout.
func NewInfo(abs, display, dirDisplay, root, layout string) (Info, error) {
	st, err := StatPath(abs)
	if err != nil {
		return Info{}, err
	}
	if layout == "" {
		layout = DefaultTimeLayout
	}

	base := filepath.Base(abs)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	info := Info{
		Path:      display,
		Dirname:   dirDisplay,
		Basename:  base,
		Extension: ext,
		Filename:  strings.TrimSuffix(base, filepath.Ext(base)),
		Type:      TypeName(st.Mode),

		Size:        st.Size,
		SizeDisplay: FormatSize(st.Size),

		Mode:               st.Mode,
		PermissionsDisplay: FormatPermissions(st.Mode, PermTypeBits),
		PermissionsType:    FormatPermissions(st.Mode, PermType),
		PermissionsBits:    FormatPermissions(st.Mode, PermBits),

		Uid:        st.Uid,
		Gid:        st.Gid,
		UidDisplay: OwnerName(st.Uid),
		GidDisplay: GroupName(st.Gid),

		Atime:        st.Atime.Unix(),
		Mtime:        st.Mtime.Unix(),
		Ctime:        st.Ctime.Unix(),
		AtimeDisplay: FormatTime(st.Atime, layout),
		MtimeDisplay: FormatTime(st.Mtime, layout),
		CtimeDisplay: FormatTime(st.Ctime, layout),

		IsReadable: fileops.IsReadable(abs),
		IsWritable: fileops.IsWritable(abs),

		Root: root,
	}

	// Directory and file flags follow links, like the type checks callers
	// expect from a path.
	if fi, err := os.Stat(abs); err == nil {
		info.IsDirectory = fi.IsDir()
		info.IsFile = fi.Mode().IsRegular()
	}
	if info.IsFile {
		if mt, err := mimetype.DetectFile(abs); err == nil {
			info.MIMEType = mt.String()
		}
	}
	return info, nil
}

// Lookup returns a single field of the record by its JSON name.
func (i Info) Lookup(name string) (any, error) {
	fields := map[string]any{
		"path": i.Path, "dirname": i.Dirname, "basename": i.Basename,
		"extension": i.Extension, "filename": i.Filename, "type": i.Type,
		"mime_type": i.MIMEType, "size": i.Size, "size_display": i.SizeDisplay,
		"mode": i.Mode, "permissions_display": i.PermissionsDisplay,
		"permissions_t": i.PermissionsType, "permissions_ugw": i.PermissionsBits,
		"uid": i.Uid, "gid": i.Gid, "uid_display": i.UidDisplay, "gid_display": i.GidDisplay,
		"atime": i.Atime, "mtime": i.Mtime, "ctime": i.Ctime,
		"atime_display": i.AtimeDisplay, "mtime_display": i.MtimeDisplay, "ctime_display": i.CtimeDisplay,
		"isDirectory": i.IsDirectory, "isFile": i.IsFile,
		"isReadable": i.IsReadable, "isWritable": i.IsWritable, "root": i.Root,
	}
	v, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("unknown info field %q", name)
	}
	return v, nil
}
