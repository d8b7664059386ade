package search

import (
	"fmt"

	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"Burrow_Hole/internal/event"
)

const (
	CollectionBurrows = "burrows"
	CollectionPosts   = "posts"
	CollectionReplies = "replies"
)

// update_time 用毫秒时间戳，做 last-writer-wins 比较

type BurrowDoc struct {
	ID          string `json:"id"`
	BurrowID    int64  `json:"burrow_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UpdateTime  int64  `json:"update_time"`
}

type PostDoc struct {
	ID         string   `json:"id"`
	PostID     int64    `json:"post_id"`
	BurrowID   int64    `json:"burrow_id"`
	Title      string   `json:"title"`
	Section    []string `json:"section"`
	Tag        []string `json:"tag"`
	UpdateTime int64    `json:"update_time"`
}

type ReplyDoc struct {
	ID         string `json:"id"`
	PostID     int64  `json:"post_id"`
	ReplyID    int32  `json:"reply_id"`
	BurrowID   int64  `json:"burrow_id"`
	Content    string `json:"content"`
	UpdateTime int64  `json:"update_time"`
}

// Stamp 只取 update_time，取回旧文档比较时用
type Stamp struct {
	UpdateTime int64 `json:"update_time"`
}

func BurrowID(id uint64) string { return fmt.Sprintf("%d", id) }
func PostID(id uint64) string   { return fmt.Sprintf("%d", id) }

// ReplyID 回复文档 id 为 "<post_id>-<reply_id>"
func ReplyID(postID uint64, replyID int32) string { return fmt.Sprintf("%d-%d", postID, replyID) }

func NewBurrowDoc(d event.BurrowData) BurrowDoc {
	return BurrowDoc{
		ID:          BurrowID(d.BurrowID),
		BurrowID:    int64(d.BurrowID),
		Title:       d.Title,
		Description: d.Description,
		UpdateTime:  d.UpdateTime.UnixMilli(),
	}
}

func NewPostDoc(d event.PostData) PostDoc {
	section, tag := d.Section, d.Tag
	if section == nil {
		section = []string{}
	}
	if tag == nil {
		tag = []string{}
	}
	return PostDoc{
		ID:         PostID(d.PostID),
		PostID:     int64(d.PostID),
		BurrowID:   int64(d.BurrowID),
		Title:      d.Title,
		Section:    section,
		Tag:        tag,
		UpdateTime: d.UpdateTime.UnixMilli(),
	}
}

func NewReplyDoc(d event.ReplyData) ReplyDoc {
	return ReplyDoc{
		ID:         ReplyID(d.PostID, d.ReplyID),
		PostID:     int64(d.PostID),
		ReplyID:    d.ReplyID,
		BurrowID:   int64(d.BurrowID),
		Content:    d.Content,
		UpdateTime: d.UpdateTime.UnixMilli(),
	}
}

// Schemas 三个集合的定义，update_time 同时作为默认排序字段
func Schemas() []*api.CollectionSchema {
	return []*api.CollectionSchema{
		{
			Name: CollectionBurrows,
			Fields: []api.Field{
				{Name: "burrow_id", Type: "int64"},
				{Name: "title", Type: "string"},
				{Name: "description", Type: "string"},
				{Name: "update_time", Type: "int64"},
			},
			DefaultSortingField: pointer.String("update_time"),
		},
		{
			Name: CollectionPosts,
			Fields: []api.Field{
				{Name: "post_id", Type: "int64"},
				{Name: "burrow_id", Type: "int64"},
				{Name: "title", Type: "string"},
				{Name: "section", Type: "string[]", Facet: pointer.True()},
				{Name: "tag", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
				{Name: "update_time", Type: "int64"},
			},
			DefaultSortingField: pointer.String("update_time"),
		},
		{
			Name: CollectionReplies,
			Fields: []api.Field{
				{Name: "post_id", Type: "int64"},
				{Name: "reply_id", Type: "int32"},
				{Name: "burrow_id", Type: "int64"},
				{Name: "content", Type: "string"},
				{Name: "update_time", Type: "int64"},
			},
			DefaultSortingField: pointer.String("update_time"),
		},
	}
}
