package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePush_Defaults(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("not json")} {
		n := ParsePush(raw)
		assert.Equal(t, "Berbagi Story", n.Title)
		assert.Equal(t, "Ada cerita baru!", n.Body)
		assert.Equal(t, "./#/stories", n.Data.URL)
		assert.Equal(t, "story-notification", n.Tag)
		assert.Empty(t, n.Actions)
	}
}

func TestParsePush_Fields(t *testing.T) {
	n := ParsePush([]byte(`{"message":"Dina membagikan cerita","storyId":"story-9","image":"https://img/9.jpg"}`))
	assert.Equal(t, "Cerita Baru", n.Title)
	assert.Equal(t, "Dina membagikan cerita", n.Body)
	assert.Equal(t, "story-9", n.Data.StoryID)
	assert.Equal(t, "https://img/9.jpg", n.Image)
	assert.Equal(t, DefaultIcon, n.Icon)
	require.Len(t, n.Actions, 2)
	assert.Equal(t, ActionOpen, n.Actions[0].Action)
	assert.Equal(t, ActionClose, n.Actions[1].Action)

	n = ParsePush([]byte(`{"title":"T","body":"B","message":"M","url":"./#/stories/9","tag":"x"}`))
	assert.Equal(t, "T", n.Title)
	assert.Equal(t, "B", n.Body)
	assert.Equal(t, "./#/stories/9", n.Data.URL)
	assert.Equal(t, "x", n.Tag)

	n = ParsePush([]byte(`{}`))
	assert.Equal(t, "Ada cerita baru yang dibagikan!", n.Body)
}

func TestParsePush_FieldsFallBackIndividually(t *testing.T) {
	n := ParsePush([]byte(`{"title":"Cerita dari Dina","body":"Lihat!","storyId":42,"icon":{"src":"x.png"},"tag":null}`))
	assert.Equal(t, "Cerita dari Dina", n.Title)
	assert.Equal(t, "Lihat!", n.Body)
	assert.Equal(t, "42", n.Data.StoryID)
	assert.Equal(t, DefaultIcon, n.Icon)
	assert.Equal(t, DefaultTag, n.Tag)
	require.Len(t, n.Actions, 2)

	n = ParsePush([]byte(`{"message":"Halo","storyId":true,"url":["./#/a"]}`))
	assert.Equal(t, "Halo", n.Body)
	assert.Equal(t, "true", n.Data.StoryID)
	assert.Equal(t, DefaultURL, n.Data.URL)
}

func TestSyncSummary(t *testing.T) {
	n := SyncSummary(2)
	assert.Equal(t, "Sinkronisasi Selesai", n.Title)
	assert.Equal(t, "2 cerita berhasil disinkronkan", n.Body)
}

func TestClickTarget(t *testing.T) {
	n := ParsePush([]byte(`{"url":"./#/stories/1"}`))

	target, ok := ClickTarget(ActionOpen, n)
	assert.True(t, ok)
	assert.Equal(t, "./#/stories/1", target)

	target, ok = ClickTarget("", Notification{})
	assert.True(t, ok)
	assert.Equal(t, DefaultURL, target)

	_, ok = ClickTarget(ActionClose, n)
	assert.False(t, ok)
}

type recorder struct {
	got []Notification
	err error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	a, b := &recorder{}, &recorder{err: errors.New("boom")}
	err := Multi{a, NewLogNotifier(logging.Nop()), b}.Notify(context.Background(), SyncSummary(1))
	require.ErrorContains(t, err, "boom")
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestBridge(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(rec, logging.Nop(), metrics.New())
	ctx := context.Background()

	n, err := b.Push(ctx, []byte(`{"title":"Hai"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hai", n.Title)

	require.NoError(t, b.SyncSummary(ctx, 3))
	require.Len(t, rec.got, 2)
	assert.Equal(t, "3 cerita berhasil disinkronkan", rec.got[1].Body)

	_, ok := b.Click(ctx, ActionClose, n)
	assert.False(t, ok)
}
