package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind 消息类型标签，序列化在 "kind" 字段
type Kind string

const (
	KindCreateBurrow Kind = "CreateBurrow"
	KindUpdateBurrow Kind = "UpdateBurrow"
	KindDeleteBurrow Kind = "DeleteBurrow"
	KindCreatePost   Kind = "CreatePost"
	KindUpdatePost   Kind = "UpdatePost"
	KindDeletePost   Kind = "DeletePost"
	KindCreateReply  Kind = "CreateReply"
	KindUpdateReply  Kind = "UpdateReply"
	KindDeleteReply  Kind = "DeleteReply"
)

type BurrowData struct {
	BurrowID    uint64    `json:"burrow_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UpdateTime  time.Time `json:"update_time"`
}

type PostData struct {
	PostID     uint64    `json:"post_id"`
	BurrowID   uint64    `json:"burrow_id"`
	Title      string    `json:"title"`
	Section    []string  `json:"section"`
	Tag        []string  `json:"tag"`
	UpdateTime time.Time `json:"update_time"`
}

type ReplyData struct {
	PostID     uint64    `json:"post_id"`
	ReplyID    int32     `json:"reply_id"`
	BurrowID   uint64    `json:"burrow_id"`
	Content    string    `json:"content"`
	UpdateTime time.Time `json:"update_time"`
}

// SearchEvent search topic 上的消息，只有本包内的类型实现
type SearchEvent interface {
	Kind() Kind
	// Key 分区键，同一文档的消息落在同一分区
	Key() string
	sealedSearch()
}

type CreateBurrow struct{ BurrowData }
type UpdateBurrow struct{ BurrowData }
type DeleteBurrow struct {
	BurrowID uint64 `json:"burrow_id"`
}

type CreatePost struct{ PostData }
type UpdatePost struct{ PostData }
type DeletePost struct {
	PostID uint64 `json:"post_id"`
}

type CreateReply struct{ ReplyData }
type UpdateReply struct{ ReplyData }
type DeleteReply struct {
	PostID  uint64 `json:"post_id"`
	ReplyID int32  `json:"reply_id"`
}

func (CreateBurrow) Kind() Kind { return KindCreateBurrow }
func (UpdateBurrow) Kind() Kind { return KindUpdateBurrow }
func (DeleteBurrow) Kind() Kind { return KindDeleteBurrow }
func (CreatePost) Kind() Kind   { return KindCreatePost }
func (UpdatePost) Kind() Kind   { return KindUpdatePost }
func (DeletePost) Kind() Kind   { return KindDeletePost }
func (CreateReply) Kind() Kind  { return KindCreateReply }
func (UpdateReply) Kind() Kind  { return KindUpdateReply }
func (DeleteReply) Kind() Kind  { return KindDeleteReply }

func (e CreateBurrow) Key() string { return burrowKey(e.BurrowID) }
func (e UpdateBurrow) Key() string { return burrowKey(e.BurrowID) }
func (e DeleteBurrow) Key() string { return burrowKey(e.BurrowID) }
func (e CreatePost) Key() string   { return postKey(e.PostID) }
func (e UpdatePost) Key() string   { return postKey(e.PostID) }
func (e DeletePost) Key() string   { return postKey(e.PostID) }
func (e CreateReply) Key() string  { return postKey(e.PostID) }
func (e UpdateReply) Key() string  { return postKey(e.PostID) }
func (e DeleteReply) Key() string  { return postKey(e.PostID) }

func (CreateBurrow) sealedSearch() {}
func (UpdateBurrow) sealedSearch() {}
func (DeleteBurrow) sealedSearch() {}
func (CreatePost) sealedSearch()   {}
func (UpdatePost) sealedSearch()   {}
func (DeletePost) sealedSearch()   {}
func (CreateReply) sealedSearch()  {}
func (UpdateReply) sealedSearch()  {}
func (DeleteReply) sealedSearch()  {}

func burrowKey(id uint64) string { return fmt.Sprintf("burrow:%d", id) }
func postKey(id uint64) string   { return fmt.Sprintf("post:%d", id) }

// envelope 线上格式：{"kind": "...", "data": {...}}
type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func EncodeSearch(ev SearchEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: ev.Kind(), Data: data})
}

func DecodeSearch(b []byte) (SearchEvent, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode search envelope: %w", err)
	}

	var ev SearchEvent
	switch env.Kind {
	case KindCreateBurrow:
		ev = &CreateBurrow{}
	case KindUpdateBurrow:
		ev = &UpdateBurrow{}
	case KindDeleteBurrow:
		ev = &DeleteBurrow{}
	case KindCreatePost:
		ev = &CreatePost{}
	case KindUpdatePost:
		ev = &UpdatePost{}
	case KindDeletePost:
		ev = &DeletePost{}
	case KindCreateReply:
		ev = &CreateReply{}
	case KindUpdateReply:
		ev = &UpdateReply{}
	case KindDeleteReply:
		ev = &DeleteReply{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("decode %s: missing data", env.Kind)
	}
	if err := json.Unmarshal(env.Data, ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	return deref(ev), nil
}

// deref 解码时用指针，交给调用方的是值类型，方便 type switch
func deref(ev SearchEvent) SearchEvent {
	switch e := ev.(type) {
	case *CreateBurrow:
		return *e
	case *UpdateBurrow:
		return *e
	case *DeleteBurrow:
		return *e
	case *CreatePost:
		return *e
	case *UpdatePost:
		return *e
	case *DeletePost:
		return *e
	case *CreateReply:
		return *e
	case *UpdateReply:
		return *e
	case *DeleteReply:
		return *e
	}
	return ev
}
