// Package export serializes chart geometry and session state for renderers.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is an output encoding.
type Format string

const (
	JSON    Format = "json"
	MsgPack Format = "msgpack"
)

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts json or msgpack in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case JSON, "":
		return JSON, nil
	case MsgPack:
		return MsgPack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FromAccept picks MessagePack when the Accept header asks for it, JSON otherwise.
func FromAccept(accept string) Format {
	if strings.Contains(accept, "application/msgpack") || strings.Contains(accept, "application/x-msgpack") {
		return MsgPack
	}
	return JSON
}

// ContentType returns the media type for f.
func (f Format) ContentType() string {
	if f == MsgPack {
		return "application/msgpack"
	}
	return "application/json"
}

// Encode writes v to w in format f. MessagePack output reuses the json
// struct tags so both encodings share field names.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		return nil
	case MsgPack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode msgpack: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}
