package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("unknown event kind")

type RelationKind string

const (
	ActivateLike         RelationKind = "ActivateLike"
	DeactivateLike       RelationKind = "DeactivateLike"
	ActivateCollection   RelationKind = "ActivateCollection"
	DeactivateCollection RelationKind = "DeactivateCollection"
	ActivateFollow       RelationKind = "ActivateFollow"
	DeactivateFollow     RelationKind = "DeactivateFollow"
)

// RelationEvent relation topic 上的 (uid, target_id)，
// like/collection 的 target 是 post_id，follow 的 target 是 burrow_id
type RelationEvent struct {
	Kind     RelationKind `json:"kind"`
	UID      uint64       `json:"uid"`
	TargetID uint64       `json:"target_id"`
}

func (e RelationEvent) Key() string { return fmt.Sprintf("%d", e.TargetID) }

func (k RelationKind) valid() bool {
	switch k {
	case ActivateLike, DeactivateLike, ActivateCollection, DeactivateCollection, ActivateFollow, DeactivateFollow:
		return true
	}
	return false
}

func EncodeRelation(ev RelationEvent) ([]byte, error) {
	if !ev.Kind.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	return json.Marshal(ev)
}

func DecodeRelation(b []byte) (RelationEvent, error) {
	var ev RelationEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return ev, fmt.Errorf("decode relation event: %w", err)
	}
	if !ev.Kind.valid() {
		return ev, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	return ev, nil
}
