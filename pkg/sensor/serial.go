package sensor

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// SerialConfig holds the parameters for opening a serial device.
type SerialConfig struct {
	Device    string
	BaudRate  int
	Delimiter string // default "\n"; a trailing "\r" is always stripped
}

// SerialSource reads newline-delimited sensor lines from a Linux serial
// port configured for raw, unbuffered operation. Reads are bounded by a
// poll timeout and a pending Close unblocks an in-flight ReadLine via a
// self-pipe.
type SerialSource struct {
	fd        int
	file      *os.File
	config    SerialConfig
	done      chan struct{}
	closeOnce sync.Once
	pipeR     int
	pipeW     int

	mu      sync.Mutex
	partial string
	pending []string
}

// OpenSerial opens the device in raw mode at the configured baud rate.
func OpenSerial(cfg SerialConfig) (*SerialSource, error) {
	if cfg.Delimiter == "" {
		cfg.Delimiter = "\n"
	}
	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	baud := baudToUnix(cfg.BaudRate)
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// VMIN=1, VTIME=0: deliver bytes as they arrive
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	if err := syscall.SetNonblock(fd, false); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set blocking: %w", err)
	}

	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &SerialSource{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		config: cfg,
		done:   make(chan struct{}),
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// ReadLine returns the next complete line, with the delimiter and any
// trailing carriage return removed. It returns ErrReadTimeout when no
// complete line arrived within the timeout, and a read error if the
// device fails or the source is closed. One serial read may complete
// several lines at once; the surplus is queued for subsequent calls.
func (s *SerialSource) ReadLine(timeout time.Duration) (string, error) {
	if line, ok := s.popPending(); ok {
		return line, nil
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 4096)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", ErrReadTimeout
		}

		pfd := []unix.PollFd{
			{Fd: int32(s.fd), Events: unix.POLLIN},
			{Fd: int32(s.pipeR), Events: unix.POLLIN},
		}
		n, err := unix.Poll(pfd, int(remaining.Milliseconds())+1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return "", fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			return "", ErrReadTimeout
		}

		select {
		case <-s.done:
			return "", fmt.Errorf("serial source closed")
		default:
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			var b [1]byte
			unix.Read(s.pipeR, b[:])
			return "", fmt.Errorf("serial source closed")
		}

		if pfd[0].Revents&unix.POLLIN != 0 {
			nr, err := s.file.Read(buf)
			if err != nil {
				return "", fmt.Errorf("serial read: %w", err)
			}
			s.feed(string(buf[:nr]))
			if line, ok := s.popPending(); ok {
				return line, nil
			}
		}
	}
}

// WriteCommand sends a single control byte to the device.
func (s *SerialSource) WriteCommand(cmd byte) error {
	_, err := s.file.Write([]byte{cmd})
	return err
}

// Close closes the port and unblocks any pending ReadLine. Safe to call
// more than once.
func (s *SerialSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.pipeW > 0 {
			unix.Write(s.pipeW, []byte{1})
		}
		if s.file != nil {
			err = s.file.Close()
		}
		if s.pipeR > 0 {
			unix.Close(s.pipeR)
		}
		if s.pipeW > 0 {
			unix.Close(s.pipeW)
		}
	})
	return err
}

func (s *SerialSource) feed(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partial += chunk
	for {
		idx := strings.Index(s.partial, s.config.Delimiter)
		if idx < 0 {
			return
		}
		line := strings.TrimSuffix(s.partial[:idx], "\r")
		s.pending = append(s.pending, line)
		s.partial = s.partial[idx+len(s.config.Delimiter):]
	}
}

func (s *SerialSource) popPending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return "", false
	}
	line := s.pending[0]
	s.pending = s.pending[1:]
	return line, true
}

func baudToUnix(baud int) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	default:
		return unix.B9600
	}
}
