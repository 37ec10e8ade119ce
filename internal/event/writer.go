package event

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"
)

// Writer appends events as JSON lines.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (jw *Writer) Publish(_ context.Context, events []Event) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	for _, e := range events {
		st, err := e.Struct()
		if err != nil {
			return err
		}
		line, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", e.Type, err)
		}
		line = append(line, '\n')
		if _, err := jw.w.Write(line); err != nil {
			return fmt.Errorf("write event %s: %w", e.Type, err)
		}
	}
	return nil
}

// LogSink logs each event at info level.
type LogSink struct {
	Log logrus.FieldLogger
}

func (s LogSink) Publish(_ context.Context, events []Event) error {
	for _, e := range events {
		fields := logrus.Fields{"pool": e.Pool, "actor": e.Actor}
		for k, v := range e.Fields {
			fields[k] = v
		}
		s.Log.WithFields(fields).Info(string(e.Type))
	}
	return nil
}
