package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doodledash/internal/component"
	"doodledash/internal/display"
	"doodledash/internal/domain"
	"doodledash/internal/filter"
)

func send(t *testing.T, h domain.Handler, texts ...string) {
	t.Helper()
	for _, text := range texts {
		require.NoError(t, h.Update(domain.NewMessage(text, "test")))
	}
}

func TestNotification_Handle(t *testing.T) {
	rec := display.NewRecord()
	n := New(NewTextHandler(""), filter.NewContainsText("123", false))

	kept, err := n.Handle(rec, []domain.Message{
		domain.NewMessage("123", ""),
		domain.NewMessage("456", ""),
		domain.NewMessage("a123", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"123", "a123"}, domain.Texts(kept))
	assert.Equal(t, []string{"Clear display", "Write text: 'a123'"}, rec.Calls())
}

func TestNotification_FiltersAreCopied(t *testing.T) {
	filters := []domain.Filter{filter.NewContainsText("a", false)}
	n := New(NewTextHandler(""), filters...)
	filters[0] = filter.NewContainsText("b", false)

	got := n.Filters()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].(*filter.ContainsText).Text())

	got[0] = nil
	assert.NotNil(t, n.Filters()[0])
}

type failingDisplay struct{ display.Record }

func (*failingDisplay) Clear() error { return errors.New("no screen") }

func TestNotification_HandleError(t *testing.T) {
	n := New(NewTextHandler(""))
	_, err := n.Handle(&failingDisplay{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draw Displays messages using: Text handler")
}

func TestNotification_String(t *testing.T) {
	n := New(NewImageHandler(""))
	assert.Equal(t, "Displays messages using: Image handler", n.String())

	n.SetName("door")
	assert.Equal(t, "door", n.String())
}

func TestTextHandler(t *testing.T) {
	rec := display.NewRecord()
	h := NewTextHandler("> ")

	require.NoError(t, h.Draw(rec))
	assert.Equal(t, []string{"Clear display"}, rec.Calls(), "nothing written before the first message")

	send(t, h, "first", "second")
	require.NoError(t, h.Draw(rec))
	assert.Equal(t, "second", h.Text())
	assert.Equal(t, "Write text: '> second'", rec.Calls()[2])
}

func TestImageHandler(t *testing.T) {
	h := NewImageHandler("default.png",
		FilteredImage{Path: "open.png", Filter: filter.NewContainsText("open", false)},
		FilteredImage{Path: "closed.png", Filter: filter.NewContainsText("closed", false)},
		FilteredImage{Path: "never.png"},
	)
	rec := display.NewRecord()

	send(t, h, "door open", "unrelated")
	assert.Equal(t, "open.png", h.Image())

	send(t, h, "door closed")
	require.NoError(t, h.Draw(rec))
	assert.Equal(t, []string{"Clear display", "Draw image: 'closed.png'"}, rec.Calls())

	require.NoError(t, h.Draw(rec))
	assert.Equal(t, "Draw image: 'default.png'", rec.Calls()[3], "selection resets after drawing")
	assert.Len(t, h.FilteredImages(), 3)

	rec = display.NewRecord()
	require.NoError(t, NewImageHandler("").Draw(rec))
	assert.Equal(t, []string{"Clear display"}, rec.Calls())
}

func TestColourHandler(t *testing.T) {
	h := NewColourHandler("black",
		FilteredColour{Colour: "red", Filter: filter.NewContainsText("alarm", false)},
	)
	rec := display.NewRecord()

	send(t, h, "alarm raised")
	require.NoError(t, h.Draw(rec))
	require.NoError(t, h.Draw(rec))
	assert.Equal(t, []string{
		"Fill display with colour: 'red'",
		"Fill display with colour: 'black'",
	}, rec.Calls())

	rec = display.NewRecord()
	require.NoError(t, NewColourHandler("").Draw(rec))
	assert.Equal(t, []string{"Clear display"}, rec.Calls())
}

type fakeDownloader struct {
	uris []string
	err  error
}

func (d *fakeDownloader) Download(_ context.Context, uri string) (string, error) {
	d.uris = append(d.uris, uri)
	if d.err != nil {
		return "", d.err
	}
	return "/cache/" + uri, nil
}

func buildHandler(t *testing.T, downloader Downloader, typ string, opts component.Options) (any, error) {
	t.Helper()
	registry := component.NewRegistry()
	require.NoError(t, Register(registry, downloader))
	reg, ok := registry.Lookup(domain.CategoryNotification, typ)
	require.True(t, ok, typ)
	return reg.Factory(opts, domain.NoSecrets{})
}

func TestRegister_Image(t *testing.T) {
	dl := &fakeDownloader{}
	got, err := buildHandler(t, dl, "image", component.Options{
		"images": []any{
			map[string]any{"uri": "a.png", "contains": "a"},
			map[string]any{"uri": "b.png", "pattern": "^b"},
		},
		"default-image": "d.png",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", "d.png"}, dl.uris)

	h := got.(*ImageHandler)
	assert.Equal(t, "/cache/d.png", h.Image())
	send(t, h, "bob")
	assert.Equal(t, "/cache/b.png", h.Image())
}

func TestRegister_ImageErrors(t *testing.T) {
	var missing *component.MissingOptionError
	_, err := buildHandler(t, &fakeDownloader{}, "image", component.Options{})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "images", missing.Option)

	var invalid *component.InvalidOptionError
	_, err = buildHandler(t, &fakeDownloader{}, "image", component.Options{
		"images": []any{map[string]any{"uri": "a.png", "contains": "a", "pattern": "a"}},
	})
	require.ErrorAs(t, err, &invalid)

	boom := errors.New("offline")
	_, err = buildHandler(t, &fakeDownloader{err: boom}, "image", component.Options{
		"images": []any{map[string]any{"uri": "a.png", "contains": "a"}},
	})
	assert.ErrorIs(t, err, boom)
}

func TestRegister_Colour(t *testing.T) {
	got, err := buildHandler(t, nil, "colour", component.Options{
		"colours": []any{map[string]any{"colour": "#ff0000", "contains": "err"}},
		"default": "#000000",
	})
	require.NoError(t, err)

	rec := display.NewRecord()
	h := got.(*ColourHandler)
	send(t, h, "err: disk")
	require.NoError(t, h.Draw(rec))
	assert.Equal(t, []string{"Fill display with colour: '#ff0000'"}, rec.Calls())

	_, err = buildHandler(t, nil, "colour", component.Options{
		"colours": []any{map[string]any{"contains": "err"}},
	})
	var missing *component.MissingOptionError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "colour", missing.Option)
}

func TestRegister_Text(t *testing.T) {
	got, err := buildHandler(t, nil, "text", component.Options{"prefix": "! "})
	require.NoError(t, err)
	assert.IsType(t, &TextHandler{}, got)
}

func TestFileDownloader(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		hits++
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	d := NewFileDownloader(t.TempDir())
	ctx := context.Background()

	p, err := d.Download(ctx, srv.URL+"/img/door.png")
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Contains(t, p, "door.png")

	again, err := d.Download(ctx, srv.URL+"/img/door.png")
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.Equal(t, 1, hits, "repeated downloads are cached")
	assert.Equal(t, []string{p}, d.Downloaded())

	_, err = d.Download(ctx, srv.URL+"/missing.png")
	assert.Error(t, err)

	local, err := d.Download(ctx, "images/local.png")
	require.NoError(t, err)
	assert.Equal(t, "images/local.png", local)

	local, err = d.Download(ctx, "file:///srv/img.png")
	require.NoError(t, err)
	assert.Equal(t, "/srv/img.png", local)

	_, err = d.Download(ctx, "ftp://example.com/x.png")
	assert.Error(t, err)
}
