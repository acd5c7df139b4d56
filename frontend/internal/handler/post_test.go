package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prolearn/prolearn/frontend/internal/apiclient"
	"github.com/prolearn/prolearn/shared/domain"
	internal_errors "github.com/prolearn/prolearn/shared/errors"
)

type feedResponse struct {
	Posts []struct {
		Id              int64  `json:"id"`
		CategoryLabel   string `json:"categoryLabel"`
		DescriptionHTML string `json:"descriptionHtml"`
		Excerpt         string `json:"excerpt"`
		Editable        bool   `json:"editable"`
		Media           []struct {
			Id  int64  `json:"id"`
			URL string `json:"url"`
		} `json:"media"`
	} `json:"posts"`
	Page     int    `json:"page"`
	Size     int    `json:"size"`
	Category string `json:"category"`
	User     string `json:"user"`
}

func TestGetMe(t *testing.T) {
	env := newTestEnv(t)
	rr := env.request(t, http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, rr.Code)

	me := decode[struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Validation struct {
			MaxAttachments          int     `json:"maxAttachments"`
			MaxVideoDurationSeconds float64 `json:"maxVideoDurationSeconds"`
			TitleMaxLen             int     `json:"titleMaxLen"`
		} `json:"validation"`
	}](t, rr)
	assert.Equal(t, testUser, me.User.Username)
	assert.Equal(t, 3, me.Validation.MaxAttachments)
	assert.Equal(t, 30.0, me.Validation.MaxVideoDurationSeconds)
	assert.Equal(t, 255, me.Validation.TitleMaxLen)
}

func TestGetCategories(t *testing.T) {
	env := newTestEnv(t)
	rr := env.request(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)

	categories := decode[[]struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}](t, rr)
	require.Len(t, categories, len(domain.Categories()))
	assert.Equal(t, "CODING", categories[0].Value)
	assert.Equal(t, "Coding", categories[0].Label)
}

func TestListPosts(t *testing.T) {
	t.Run("defaults and rendering", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.page.Content = []domain.Post{*env.backend.posts[42], *env.backend.posts[43]}

		rr := env.request(t, http.MethodGet, "/api/posts", "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, []string{"list 0 10"}, env.backend.recorded())

		feed := decode[feedResponse](t, rr)
		require.Len(t, feed.Posts, 2)
		first := feed.Posts[0]
		assert.Equal(t, "<p><strong>bold</strong></p>", first.DescriptionHTML)
		assert.Equal(t, "**bold**", first.Excerpt)
		assert.Equal(t, "Coding", first.CategoryLabel)
		assert.True(t, first.Editable)
		require.Len(t, first.Media, 2)
		assert.Equal(t, "http://backend/api/posts/media/a.jpg", first.Media[0].URL)
		assert.False(t, feed.Posts[1].Editable)
		assert.NotNil(t, feed.Posts[1].Media)
	})

	t.Run("category filter", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.request(t, http.MethodGet, "/api/posts?category=DATA_SCIENCE&page=2&size=5", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"list DATA_SCIENCE 2 5"}, env.backend.recorded())
		assert.Equal(t, "DATA_SCIENCE", decode[feedResponse](t, rr).Category)
	})

	t.Run("user filter", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.request(t, http.MethodGet, "/api/posts?user=someoneelse", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"list user someoneelse 0 10"}, env.backend.recorded())
		assert.Equal(t, "someoneelse", decode[feedResponse](t, rr).User)
	})

	t.Run("bad query", func(t *testing.T) {
		env := newTestEnv(t)
		for _, q := range []string{"?category=CODING&user=demouser", "?category=COOKING", "?page=-1", "?page=x", "?size=0"} {
			rr := env.request(t, http.MethodGet, "/api/posts"+q, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		}
		assert.Empty(t, env.backend.recorded())
	})

	t.Run("backend unavailable", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.err = fmt.Errorf("%w: dial tcp: refused", apiclient.ErrBackendUnavailable)
		rr := env.request(t, http.MethodGet, "/api/posts", "")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("backend status is forwarded", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.err = &internal_errors.ErrorWithStatusCode{Message: "Page out of range", StatusCode: http.StatusBadRequest}
		rr := env.request(t, http.MethodGet, "/api/posts", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Page out of range\n", rr.Body.String())
	})
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, http.MethodGet, "/api/posts/42", "")
	require.Equal(t, http.StatusOK, rr.Code)
	post := decode[struct {
		Id              int64  `json:"id"`
		DescriptionHTML string `json:"descriptionHtml"`
	}](t, rr)
	assert.Equal(t, int64(42), post.Id)
	assert.Equal(t, "<p><strong>bold</strong></p>", post.DescriptionHTML)

	rr = env.request(t, http.MethodGet, "/api/posts/999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.request(t, http.MethodGet, "/api/posts/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPostActions(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNoContent, env.request(t, http.MethodPost, "/api/posts/42/like", "").Code)
	assert.Equal(t, http.StatusNoContent, env.request(t, http.MethodDelete, "/api/posts/42/like", "").Code)
	assert.Equal(t, http.StatusNoContent, env.request(t, http.MethodDelete, "/api/posts/42", "").Code)
	assert.Equal(t, []string{"like 42", "unlike 42", "delete 42"}, env.backend.recorded())

	env.backend.err = &internal_errors.ErrorWithStatusCode{Message: "Forbidden", StatusCode: http.StatusForbidden}
	assert.Equal(t, http.StatusForbidden, env.request(t, http.MethodDelete, "/api/posts/43", "").Code)
}

func TestComments(t *testing.T) {
	t.Run("add renders content", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.request(t, http.MethodPost, "/api/posts/42/comments", `{"content":"nice _post_"}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		comment := decode[struct {
			Content     string `json:"content"`
			ContentHTML string `json:"contentHtml"`
		}](t, rr)
		assert.Equal(t, "nice _post_", comment.Content)
		assert.Equal(t, "<p>nice <em>post</em></p>", comment.ContentHTML)
	})

	t.Run("empty content is rejected locally", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.request(t, http.MethodPost, "/api/posts/42/comments", `{"content":""}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, env.backend.recorded())
	})

	t.Run("delete", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.request(t, http.MethodDelete, "/api/posts/42/comments/5", "")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, []string{"uncomment 42 5"}, env.backend.recorded())
	})
}
