package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

type EmailKind string

const (
	EmailSign  EmailKind = "Sign"
	EmailReset EmailKind = "Reset"
)

type EmailEvent struct {
	Kind    EmailKind `json:"kind"`
	Address string    `json:"address"`
}

func (e EmailEvent) Key() string { return strings.ToLower(e.Address) }

// CodeLen 注册 6 位，重置密码 10 位
func (k EmailKind) CodeLen() int {
	if k == EmailReset {
		return 10
	}
	return 6
}

func EncodeEmail(ev EmailEvent) ([]byte, error) {
	if ev.Kind != EmailSign && ev.Kind != EmailReset {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	return json.Marshal(ev)
}

func DecodeEmail(b []byte) (EmailEvent, error) {
	var ev EmailEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return ev, fmt.Errorf("decode email event: %w", err)
	}
	if ev.Kind != EmailSign && ev.Kind != EmailReset {
		return ev, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	if ev.Address == "" {
		return ev, fmt.Errorf("decode email event: empty address")
	}
	return ev, nil
}
