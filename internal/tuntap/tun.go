//go:build linux

// Package tuntap opens a layer-3 tun device and exposes blocking read/write
// access to the raw IPv4 datagrams it carries. It plays the role of the
// "tunnel device" external collaborator of the spec: callers get whole
// datagrams on Read and hand whole datagrams to Write.
package tuntap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ifNameSize = 16
	tunPath    = "/dev/net/tun"
)

// ifReq mirrors struct ifreq from <linux/if.h>, trimmed to the fields the
// TUNSETIFF ioctl reads.
type ifReq struct {
	name  [ifNameSize]byte
	flags uint16
	_     [22]byte
}

// Device is an open tun interface. It is not safe for concurrent use: the
// spec's concurrency model has exactly one goroutine own it.
type Device struct {
	fd int
}

// Open creates (or attaches to) the named tun interface in IFF_TUN|IFF_NO_PI
// mode: no link-layer header, no packet-information prefix, IPv4/IPv6
// datagrams only.
func Open(name string) (*Device, error) {
	fd, err := unix.Open(tunPath, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("tuntap: open %s: %w", tunPath, err)
	}

	var req ifReq
	copy(req.name[:], name)
	req.flags = unix.IFF_TUN | unix.IFF_NO_PI

	if err := ioctl(fd, unix.TUNSETIFF, &req); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tuntap: TUNSETIFF %s: %w", name, err)
	}

	return &Device{fd: fd}, nil
}

// Read blocks until a datagram is available and copies it into buf,
// returning the number of bytes written. buf should be sized to the
// interface's MTU plus headroom (the spec's receive buffer is 1504 bytes).
func (d *Device) Read(buf []byte) (int, error) {
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		return 0, fmt.Errorf("tuntap: read: %w", err)
	}
	return n, nil
}

// Write sends a complete datagram. Partial writes are treated as failures:
// the tun device does not support partial datagram delivery.
func (d *Device) Write(buf []byte) error {
	n, err := unix.Write(d.fd, buf)
	if err != nil {
		return fmt.Errorf("tuntap: write: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("tuntap: short write: wrote %d of %d bytes", n, len(buf))
	}
	return nil
}

// Close releases the underlying file descriptor.
func (d *Device) Close() error {
	return unix.Close(d.fd)
}

// ioctl issues a TUNSETIFF-style ioctl carrying a pointer argument; the
// x/sys/unix package has no typed wrapper for it, so this goes straight to
// the raw syscall the same way unix.IoctlSetInt does internally.
func ioctl(fd int, req uint, arg *ifReq) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(arg)))
	if errno != 0 {
		return errno
	}
	return nil
}
