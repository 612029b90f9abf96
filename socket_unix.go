package lineecho

import (
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// socketAPI is the set of descriptor operations the establisher needs.
// FileConn and FileListener take ownership of fd: it is closed on return
// whether or not the conversion succeeds.
type socketAPI interface {
	Socket(domain, typ, proto int) (int, error)
	SetReuseAddr(fd int) error
	Bind(fd int, sa unix.Sockaddr) error
	Connect(fd int, sa unix.Sockaddr) error
	Listen(fd, backlog int) error
	Close(fd int) error
	FileConn(fd int) (net.Conn, error)
	FileListener(fd int) (net.Listener, error)
}

// sysSockets talks to the kernel.
type sysSockets struct{}

func (sysSockets) Socket(domain, typ, proto int) (int, error) {
	fd, err := unix.Socket(domain, typ, proto)
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	syscall.CloseOnExec(fd)
	return fd, nil
}

func (sysSockets) SetReuseAddr(fd int) error {
	return os.NewSyscallError("setsockopt", unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1))
}

func (sysSockets) Bind(fd int, sa unix.Sockaddr) error {
	return os.NewSyscallError("bind", unix.Bind(fd, sa))
}

func (sysSockets) Connect(fd int, sa unix.Sockaddr) error {
	return os.NewSyscallError("connect", unix.Connect(fd, sa))
}

func (sysSockets) Listen(fd, backlog int) error {
	return os.NewSyscallError("listen", unix.Listen(fd, backlog))
}

func (sysSockets) Close(fd int) error {
	return os.NewSyscallError("close", unix.Close(fd))
}

func (sysSockets) FileConn(fd int) (net.Conn, error) {
	f := os.NewFile(uintptr(fd), "lineecho-conn")
	defer f.Close()
	return net.FileConn(f)
}

func (sysSockets) FileListener(fd int) (net.Listener, error) {
	f := os.NewFile(uintptr(fd), "lineecho-listener")
	defer f.Close()
	return net.FileListener(f)
}
