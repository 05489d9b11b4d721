package sensor

import (
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

func TestSerialSource_ReadLine(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	src, err := OpenSerial(SerialConfig{Device: slave.Name(), BaudRate: 9600, Delimiter: "\n"})
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	_, err = master.Write([]byte("16.611,-1.011,1023,1023,1023\r\n"))
	require.NoError(t, err)

	line, err := src.ReadLine(500 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, "16.611,-1.011,1023,1023,1023", line)
}

func TestSerialSource_QueuesMultipleLines(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	src, err := OpenSerial(SerialConfig{Device: slave.Name(), BaudRate: 9600, Delimiter: "\n"})
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	_, err = master.Write([]byte("one\ntwo\nthree\n"))
	require.NoError(t, err)

	for _, want := range []string{"one", "two", "three"} {
		line, err := src.ReadLine(500 * time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, want, line)
	}
}

func TestSerialSource_Timeout(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	src, err := OpenSerial(SerialConfig{Device: slave.Name(), BaudRate: 9600, Delimiter: "\n"})
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	start := time.Now()
	_, err = src.ReadLine(50 * time.Millisecond)
	require.ErrorIs(t, err, ErrReadTimeout)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSerialSource_PartialLineThenRest(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	src, err := OpenSerial(SerialConfig{Device: slave.Name(), BaudRate: 9600, Delimiter: "\n"})
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	_, err = master.Write([]byte("1.0,0.5,"))
	require.NoError(t, err)
	_, err = src.ReadLine(50 * time.Millisecond)
	require.ErrorIs(t, err, ErrReadTimeout)

	_, err = master.Write([]byte("10,20,30\n"))
	require.NoError(t, err)
	line, err := src.ReadLine(500 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, "1.0,0.5,10,20,30", line)
}

func TestSerialSource_WriteCommand(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	src, err := OpenSerial(SerialConfig{Device: slave.Name(), BaudRate: 9600, Delimiter: "\n"})
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })

	require.NoError(t, src.WriteCommand('s'))

	buf := make([]byte, 8)
	n, err := master.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "s", string(buf[:n]))
}

func TestSerialSource_CloseUnblocksRead(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	src, err := OpenSerial(SerialConfig{Device: slave.Name(), BaudRate: 9600, Delimiter: "\n"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := src.ReadLine(5 * time.Second)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, src.Close())

	select {
	case err := <-done:
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrReadTimeout)
	case <-time.After(time.Second):
		t.Fatal("ReadLine not unblocked by Close")
	}
}
