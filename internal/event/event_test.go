package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchEventRoundTrip(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := CreatePost{PostData{PostID: 42, BurrowID: 3, Title: "A", Section: []string{"life"}, UpdateTime: t0}}

	b, err := EncodeSearch(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"CreatePost"`)

	out, err := DecodeSearch(b)
	require.NoError(t, err)
	got, ok := out.(CreatePost)
	require.True(t, ok, "decoded %T", out)
	assert.Equal(t, uint64(42), got.PostID)
	assert.Equal(t, "A", got.Title)
	assert.True(t, got.UpdateTime.Equal(t0))
	assert.Equal(t, "post:42", got.Key())
}

func TestDecodeSearchDeleteReply(t *testing.T) {
	out, err := DecodeSearch([]byte(`{"kind":"DeleteReply","data":{"post_id":9,"reply_id":2}}`))
	require.NoError(t, err)
	assert.Equal(t, DeleteReply{PostID: 9, ReplyID: 2}, out)
}

func TestDecodeSearchRejectsUnknownKind(t *testing.T) {
	_, err := DecodeSearch([]byte(`{"kind":"CreateUser","data":{}}`))
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = DecodeSearch([]byte(`{"kind":"CreatePost"}`))
	assert.Error(t, err)

	_, err = DecodeSearch([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeRelation(t *testing.T) {
	ev, err := DecodeRelation([]byte(`{"kind":"ActivateLike","uid":7,"target_id":42}`))
	require.NoError(t, err)
	assert.Equal(t, RelationEvent{Kind: ActivateLike, UID: 7, TargetID: 42}, ev)

	_, err = DecodeRelation([]byte(`{"kind":"Poke","uid":7,"target_id":42}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDecodeEmail(t *testing.T) {
	ev, err := DecodeEmail([]byte(`{"kind":"Reset","address":"a@pku.edu.cn"}`))
	require.NoError(t, err)
	assert.Equal(t, 10, ev.Kind.CodeLen())
	assert.Equal(t, 6, EmailSign.CodeLen())

	_, err = DecodeEmail([]byte(`{"kind":"Sign","address":""}`))
	assert.Error(t, err)
}

type recordSender struct {
	keys []string
	err  error
}

func (r *recordSender) Send(_ context.Context, key string, _ []byte) error {
	r.keys = append(r.keys, key)
	return r.err
}

func TestPublisherIsBestEffort(t *testing.T) {
	search := &recordSender{}
	relation := &recordSender{err: errors.New("broker down")}
	p := NewPublisher(search, relation, nil)

	ctx := context.Background()
	p.Search(ctx, DeletePost{PostID: 5})
	p.Relation(ctx, RelationEvent{Kind: ActivateFollow, UID: 1, TargetID: 8})
	p.Email(ctx, EmailEvent{Kind: EmailSign, Address: "x@y.z"})
	p.Relation(ctx, RelationEvent{Kind: "bogus"})

	assert.Equal(t, []string{"post:5"}, search.keys)
	assert.Equal(t, []string{"8"}, relation.keys)
}
