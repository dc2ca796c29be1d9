//go:build unix

package source

import (
	"os"

	"github.com/tysonmote/gommap"

	"firestige.xyz/u2kit/internal/core"
)

func init() {
	Register(string(KindMapped), func(target string) (Source, error) { return OpenMapped(target) })
}

// OpenMapped maps path read-only and serves it as a memory source. Bytes
// appended to the file after mapping are not visible.
func OpenMapped(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewIOError("open", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, core.NewIOError("stat", path, err)
	}
	if fi.Size() == 0 {
		return nil, core.NewIOError("open", path, errEmptyBuffer)
	}

	mm, err := gommap.Map(f.Fd(), gommap.PROT_READ, gommap.MAP_PRIVATE)
	if err != nil {
		return nil, core.NewIOError("mmap", path, err)
	}
	return &Memory{
		buf:     mm,
		name:    path,
		kind:    KindMapped,
		release: mm.UnsafeUnmap,
	}, nil
}
