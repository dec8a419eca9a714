package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AsyncFileWriter buffers log lines on a channel and flushes them to disk
// every two seconds. Lines are dropped when the channel is full.
type AsyncFileWriter struct {
	writer  *bufio.Writer
	file    *os.File
	mu      sync.Mutex
	logChan chan []byte
	done    chan struct{}
	stopped chan struct{}
}

func NewAsyncFileWriter(logFile string, bufferSize int) (*AsyncFileWriter, error) {
	safeLogFile := filepath.Clean(logFile)
	file, err := os.OpenFile(safeLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	writer := bufio.NewWriterSize(file, bufferSize)
	aw := &AsyncFileWriter{
		writer:  writer,
		file:    file,
		logChan: make(chan []byte, 1000),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go aw.processLogs()

	return aw, nil
}

func (aw *AsyncFileWriter) Write(p []byte) (n int, err error) {
	select {
	case aw.logChan <- append([]byte{}, p...):
		return len(p), nil
	default:
		return len(p), nil
	}
}

func (aw *AsyncFileWriter) processLogs() {
	defer close(aw.stopped)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case logData := <-aw.logChan:
			aw.mu.Lock()
			_, err := aw.writer.Write(logData)
			if err != nil {
				fmt.Println("error writing log data to file", err)
			}
			aw.mu.Unlock()

		case <-ticker.C:
			aw.mu.Lock()
			_ = aw.writer.Flush()
			aw.mu.Unlock()

		case <-aw.done:
			aw.mu.Lock()
			for len(aw.logChan) > 0 {
				_, _ = aw.writer.Write(<-aw.logChan)
			}
			_ = aw.writer.Flush()
			aw.mu.Unlock()
			return
		}
	}
}

func (aw *AsyncFileWriter) Close() {
	close(aw.done)
	<-aw.stopped
	_ = aw.file.Close()
}
