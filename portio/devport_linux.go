//go:build linux

package portio

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultDevPortPath is the character device that exposes I/O port space.
const DefaultDevPortPath = "/dev/port"

// DevPort accesses I/O ports through the /dev/port character device, where
// the file offset is the port number. It needs CAP_SYS_RAWIO.
type DevPort struct {
	path string
	fd   int
}

// OpenDevPort opens the port device at path.
func OpenDevPort(path string) (*DevPort, error) {
	if path == "" {
		path = DefaultDevPortPath
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &DevPort{path: path, fd: fd}, nil
}

// Close releases the device.
func (d *DevPort) Close() error {
	return unix.Close(d.fd)
}

func (d *DevPort) String() string {
	return d.path
}

func (d *DevPort) pread(port uint16, p []byte) {
	n, err := unix.Pread(d.fd, p, int64(port))
	if err != nil || n != len(p) {
		panic(fmt.Sprintf("could not read %s port 0x%x: n=%d, err=%v",
			d.path, port, n, err))
	}
}

func (d *DevPort) pwrite(port uint16, p []byte) {
	n, err := unix.Pwrite(d.fd, p, int64(port))
	if err != nil || n != len(p) {
		panic(fmt.Sprintf("could not write %s port 0x%x: n=%d, err=%v",
			d.path, port, n, err))
	}
}

func (d *DevPort) In8(port uint16) uint8 {
	var b [1]byte
	d.pread(port, b[:])

	return b[0]
}

func (d *DevPort) In16(port uint16) uint16 {
	var b [2]byte
	d.pread(port, b[:])

	return binary.LittleEndian.Uint16(b[:])
}

func (d *DevPort) In32(port uint16) uint32 {
	var b [4]byte
	d.pread(port, b[:])

	return binary.LittleEndian.Uint32(b[:])
}

func (d *DevPort) Out8(port uint16, v uint8) {
	d.pwrite(port, []byte{v})
}

func (d *DevPort) Out16(port uint16, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	d.pwrite(port, b[:])
}

func (d *DevPort) Out32(port uint16, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	d.pwrite(port, b[:])
}
