// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build linux

// Interrupt delivery for DSPI modules via Linux UIO devices.

package dspi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrAlreadyRegistered indicates the instance already has a handler.
var ErrAlreadyRegistered = errors.New("watch already exists")

type interrupt struct {
	n       Instance
	handler func(Instance)
	file    *os.File
}

// Watcher delivers the interrupts of UIO devices to handlers.
//
// Each UIO device must be bound to the interrupt line of a DSPI module.
// Handlers are called from the Watcher goroutine, one at a time, and the
// device interrupt is re-enabled once the handler returns.
type Watcher struct {
	epfd int
	mu   sync.Mutex // Guards the following.
	// Map from instance to UIO fd.
	fds map[Instance]int
	// Map from UIO fd to interrupt.
	interrupts map[int]*interrupt
}

// NewWatcher creates a Watcher and starts its goroutine.
func NewWatcher() (*Watcher, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("unable to create epoll: %w", err)
	}
	w := &Watcher{
		epfd:       epfd,
		fds:        make(map[Instance]int),
		interrupts: make(map[int]*interrupt),
	}
	go w.watch()
	return w, nil
}

func (w *Watcher) watch() {
	var events [NumInstances]unix.EpollEvent
	var count [4]byte
	for {
		n, err := unix.EpollWait(w.epfd, events[:], -1)
		if err != nil {
			if err == unix.EBADF || err == unix.EINVAL {
				// fd closed so exit
				return
			}
			if err == unix.EINTR {
				continue
			}
			panic(fmt.Sprintf("EpollWait error: %v", err))
		}
		irqs := make([]*interrupt, 0, n)
		w.mu.Lock()
		for _, event := range events[:n] {
			if irq, ok := w.interrupts[int(event.Fd)]; ok {
				irqs = append(irqs, irq)
			}
		}
		w.mu.Unlock()
		for _, irq := range irqs {
			// reading acknowledges the event
			if _, err := irq.file.Read(count[:]); err != nil {
				continue
			}
			irq.handler(irq.n)
			enable(irq.file)
		}
	}
}

// enable unmasks the UIO interrupt.
func enable(f *os.File) error {
	var on [4]byte
	binary.LittleEndian.PutUint32(on[:], 1)
	_, err := f.Write(on[:])
	return err
}

// Register calls the handler whenever the interrupt of the UIO device at
// path is raised.
//
// The instance can only be registered once.  Subsequent registers,
// without an Unregister, will return an error.
func (w *Watcher) Register(n Instance, path string, handler func(Instance)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.fds[n]; ok {
		return ErrAlreadyRegistered
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	fd := int(f.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		f.Close()
		return err
	}
	event := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
		f.Close()
		return err
	}
	if err := enable(f); err != nil {
		unix.EpollCtl(w.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		f.Close()
		return err
	}
	w.fds[n] = fd
	w.interrupts[fd] = &interrupt{n: n, handler: handler, file: f}
	return nil
}

// Unregister removes the handler for the instance.
func (w *Watcher) Unregister(n Instance) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fd, ok := w.fds[n]
	if !ok {
		return
	}
	delete(w.fds, n)
	unix.EpollCtl(w.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if irq, ok := w.interrupts[fd]; ok {
		delete(w.interrupts, fd)
		irq.file.Close()
	}
}

// Close stops the Watcher and releases all the UIO devices.
func (w *Watcher) Close() {
	unix.Close(w.epfd)
	w.mu.Lock()
	defer w.mu.Unlock()
	for fd, irq := range w.interrupts {
		irq.file.Close()
		delete(w.interrupts, fd)
	}
	w.fds = make(map[Instance]int)
}

// Watch delivers the interrupts of the UIO device at path to the instance
// Master of the Controller.
func (c *Controller) Watch(w *Watcher, n Instance, path string) error {
	return w.Register(n, path, c.HandleInterrupt)
}
