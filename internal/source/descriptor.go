//go:build unix

package source

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"

	"firestige.xyz/u2kit/internal/core"
)

func init() {
	Register(string(KindDescriptor), func(target string) (Source, error) { return OpenDescriptor(target) })
	RegisterSink(string(KindDescriptor), func(target string, append bool) (Sink, error) {
		return CreateDescriptor(target, append)
	})
}

// readAhead is how many bytes AtEnd reads ahead.
const readAhead = 4

// Descriptor reads a raw file descriptor without user-space buffering. The
// logical position is tracked here, so forward seeks and AtEnd also work on
// pipes.
type Descriptor struct {
	fd     int
	name   string
	pos    int64
	owned  bool
	closed bool

	// bytes AtEnd read ahead, handed out by Read before the descriptor
	ahead   [readAhead]byte
	pending []byte
}

// OpenDescriptor opens path read-only.
func OpenDescriptor(path string) (*Descriptor, error) {
	fd, err := openRetry(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, core.NewIOError("open", path, err)
	}
	return &Descriptor{fd: fd, name: path, owned: true}, nil
}

// FromDescriptor wraps an already open descriptor; Close leaves it open.
func FromDescriptor(fd int, name string) *Descriptor {
	d := &Descriptor{fd: fd, name: name}
	if off, err := unix.Seek(fd, 0, io.SeekCurrent); err == nil {
		d.pos = off
	}
	return d
}

func (d *Descriptor) Kind() Kind   { return KindDescriptor }
func (d *Descriptor) Name() string { return d.name }
func (d *Descriptor) Fd() int      { return d.fd }

// Read fills p unless input ends first. Interrupted reads are retried and a
// non-blocking descriptor is polled until readable.
func (d *Descriptor) Read(p []byte) (int, error) {
	if d.closed {
		return 0, core.ErrClosed
	}
	total := copy(p, d.pending)
	d.pending = d.pending[total:]
	n, err := d.readFd(p[total:])
	total += n
	d.pos += int64(total)
	if err != nil {
		return total, err
	}
	if total == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

// readFd reads straight from the descriptor until p is full or input ends.
func (d *Descriptor) readFd(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Read(d.fd, p[total:])
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			if perr := d.waitReadable(); perr != nil {
				return total, perr
			}
			continue
		case err != nil:
			return total, core.NewIOError("read", d.name, err)
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}

func (d *Descriptor) waitReadable() error {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
	for {
		_, err := unix.Poll(fds, -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return core.NewIOError("poll", d.name, err)
	}
}

// Seek repositions the descriptor. When it cannot seek, a forward relative
// seek consumes the bytes instead.
func (d *Descriptor) Seek(offset int64, whence int) (int64, error) {
	if d.closed {
		return 0, core.ErrClosed
	}
	if whence == io.SeekCurrent && offset == 0 {
		return d.pos, nil
	}

	var (
		off int64
		err error
	)
	switch whence {
	case io.SeekCurrent:
		// the kernel offset is ahead of pos by the pending bytes
		off, err = unix.Seek(d.fd, d.pos+offset, io.SeekStart)
	default:
		off, err = unix.Seek(d.fd, offset, whence)
	}
	if err == nil {
		d.pending = nil
		d.pos = off
		return off, nil
	}
	if whence == io.SeekCurrent && offset > 0 {
		return d.discard(offset)
	}
	return d.pos, core.NewIOError("seek", d.name, err)
}

func (d *Descriptor) discard(offset int64) (int64, error) {
	var buf [4096]byte
	for offset > 0 {
		chunk := int64(len(buf))
		if offset < chunk {
			chunk = offset
		}
		n, err := d.Read(buf[:chunk])
		offset -= int64(n)
		if errors.Is(err, io.EOF) {
			return d.pos, core.NewIOError("seek", d.name, io.ErrUnexpectedEOF)
		}
		if err != nil {
			return d.pos, err
		}
	}
	return d.pos, nil
}

// AtEnd reads a few bytes ahead and keeps them for the next Read. Read
// failures other than end of input report false so the caller's next read
// surfaces them.
func (d *Descriptor) AtEnd() bool {
	if d.closed {
		return true
	}
	if len(d.pending) > 0 {
		return false
	}
	n, err := d.readFd(d.ahead[:])
	if n > 0 {
		d.pending = d.ahead[:n]
		return false
	}
	return err == nil
}

// Size reports the length of regular files.
func (d *Descriptor) Size() (int64, bool) {
	if d.closed {
		return 0, false
	}
	var st unix.Stat_t
	if err := unix.Fstat(d.fd, &st); err != nil {
		return 0, false
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return 0, false
	}
	return st.Size, true
}

func (d *Descriptor) Close() error {
	if d.closed {
		return core.ErrClosed
	}
	d.closed = true
	if !d.owned {
		return nil
	}
	return core.NewIOError("close", d.name, unix.Close(d.fd))
}

// DescriptorSink writes unbuffered to a file descriptor.
type DescriptorSink struct {
	fd     int
	name   string
	closed bool
}

// CreateDescriptor opens path for writing with mode 0644, truncating it
// unless append is set.
func CreateDescriptor(path string, append bool) (*DescriptorSink, error) {
	flags := unix.O_WRONLY | unix.O_CREAT | unix.O_CLOEXEC
	if append {
		flags |= unix.O_APPEND
	} else {
		flags |= unix.O_TRUNC
	}
	fd, err := openRetry(path, flags, 0644)
	if err != nil {
		return nil, core.NewIOError("open", path, err)
	}
	return &DescriptorSink{fd: fd, name: path}, nil
}

func (s *DescriptorSink) Name() string { return s.name }

// Write loops until p is written in full or the descriptor fails.
func (s *DescriptorSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, core.ErrClosed
	}
	total := 0
	for total < len(p) {
		n, err := unix.Write(s.fd, p[total:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return total, core.NewIOError("write", s.name, err)
		}
		if n == 0 {
			return total, core.NewIOError("write", s.name, io.ErrShortWrite)
		}
		total += n
	}
	return total, nil
}

func (s *DescriptorSink) Close() error {
	if s.closed {
		return core.ErrClosed
	}
	s.closed = true
	return core.NewIOError("close", s.name, unix.Close(s.fd))
}

func openRetry(path string, flags int, mode uint32) (int, error) {
	for {
		fd, err := unix.Open(path, flags, mode)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return fd, err
	}
}
