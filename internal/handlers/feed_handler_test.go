package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexListsNewestFirst(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	app.post(leo, "older post", nil)
	app.post(leo, "newer post", nil)

	rec := app.get("/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "newer post"), strings.Index(body, "older post"))
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	for i := 1; i <= 5; i++ {
		app.post(leo, fmt.Sprintf("post number %d", i), nil)
	}

	tests := []struct {
		query    string
		contains []string
		excludes []string
	}{
		{"", []string{"post number 5", "post number 2"}, []string{"post number 1"}},
		{"?page=abc", []string{"post number 5"}, []string{"post number 1"}},
		{"?page=2", []string{"post number 1"}, []string{"post number 5"}},
		{"?page=99", []string{"post number 1"}, []string{"post number 5"}},
		{"?page=0", []string{"post number 1"}, []string{"post number 5"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := app.get("/"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			for _, s := range tt.contains {
				assert.Contains(t, rec.Body.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestIndexIsCached(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	app.post(leo, "cached text", nil)

	first := app.get("/", nil)
	require.Equal(t, http.StatusOK, first.Code)

	before := app.store.Queries()
	second := app.get("/", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, before, app.store.Queries(), "cached page must not touch the store")
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())

	app.post(leo, "fresh text", nil)
	assert.NotContains(t, app.get("/", nil).Body.String(), "fresh text")

	app.cache.Clear()
	before = app.store.Queries()
	third := app.get("/", nil)
	assert.Greater(t, app.store.Queries(), before)
	assert.Contains(t, third.Body.String(), "fresh text")
}

func TestIndexCacheIsPerViewer(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")

	anonymous := app.get("/", nil)
	loggedIn := app.get("/", leo)
	assert.NotContains(t, anonymous.Body.String(), "/new/")
	assert.Contains(t, loggedIn.Body.String(), "/new/")
}

func TestGroupPosts(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	cats := app.group("Cats", "cats")
	app.post(leo, "cat post", cats)
	app.post(leo, "dog post", nil)

	rec := app.get("/group/cats/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cats")
	assert.Contains(t, rec.Body.String(), "cat post")
	assert.NotContains(t, rec.Body.String(), "dog post")

	rec = app.get("/group/missing/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/group/missing/")
}

func TestProfile(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	mia := app.user("mia")
	app.post(leo, "leo writes", nil)
	app.post(mia, "mia writes", nil)

	rec := app.get("/leo/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leo writes")
	assert.NotContains(t, rec.Body.String(), "mia writes")
	assert.NotContains(t, rec.Body.String(), "/leo/follow/")

	rec = app.get("/leo/", mia)
	assert.Contains(t, rec.Body.String(), `action="/leo/follow/"`)

	app.postForm("/leo/follow/", nil, mia)
	rec = app.get("/leo/", mia)
	assert.Contains(t, rec.Body.String(), `action="/leo/unfollow/"`)

	rec = app.get("/leo/", leo)
	assert.NotContains(t, rec.Body.String(), "/leo/follow/")

	assert.Equal(t, http.StatusNotFound, app.get("/nobody/", nil).Code)
}

func TestFollowFeed(t *testing.T) {
	app := newTestApp(t)
	author := app.user("author")
	follower := app.user("follower")
	stranger := app.user("stranger")
	app.post(author, "followed text", nil)

	app.postForm("/author/follow/", nil, follower)

	rec := app.get("/follow/", follower)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "followed text")

	rec = app.get("/follow/", stranger)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "followed text")

	rec = app.get("/follow/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=/follow/", rec.Header().Get("Location"))
}
