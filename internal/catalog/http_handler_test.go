package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockRepository(ctrl)
	return NewHTTPHandler(NewService(mockRepo, zap.NewNop())), mockRepo
}

func TestHTTPHandler_List(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), Books, Filter{Title: "dune"}).Return([]Item{
			{ID: 1, Kind: "book", Fields: map[string]string{"title": "Dune", "author": "Herbert"}, Year: 1965, Rank: 1},
		}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/books?title=dune", nil)
		r.SetPathValue("kind", "books")

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Success bool             `json:"success"`
			Data    []map[string]any `json:"data"`
			Meta    map[string]any   `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "Dune", body.Data[0]["title"])
		assert.Equal(t, float64(1), body.Meta["total"])
	})

	t.Run("unknown kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/comics", nil)
		r.SetPathValue("kind", "comics")

		handler.List(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), Films, gomock.Any()).Return(nil, errors.New("db error"))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/films", nil)
		r.SetPathValue("kind", "films")

		handler.List(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), Films, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ Kind, it *Item) error {
				it.ID, it.Rank = 7, 2
				return nil
			})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/films",
			strings.NewReader(`{"title":"Heat","director":"Mann","year":1995}`))
		r.SetPathValue("kind", "films")

		handler.Create(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"rank":2`)
	})

	t.Run("validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/films", strings.NewReader(`{"title":"Heat"}`))
		r.SetPathValue("kind", "films")

		handler.Create(w, r)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Director is required")
		assert.Contains(t, w.Body.String(), "Year is required")
	})

	t.Run("bad json", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/films", strings.NewReader(`{`))
		r.SetPathValue("kind", "films")

		handler.Create(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_GetAndDelete(t *testing.T) {
	handler, mockRepo := newTestHandler(t)

	t.Run("get not found", func(t *testing.T) {
		mockRepo.EXPECT().Get(gomock.Any(), Magazines, int64(9)).Return(Item{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/magazines/9", nil)
		r.SetPathValue("kind", "magazines")
		r.SetPathValue("id", "9")

		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/v1/magazines/abc", nil)
		r.SetPathValue("kind", "magazines")
		r.SetPathValue("id", "abc")

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), Magazines, int64(3)).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/v1/magazines/3", nil)
		r.SetPathValue("kind", "magazines")
		r.SetPathValue("id", "3")

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("delete not found", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), Magazines, int64(4)).Return(ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/v1/magazines/4", nil)
		r.SetPathValue("kind", "magazines")
		r.SetPathValue("id", "4")

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
