package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/MediSynth-io/postsvc/internal/store"
	"github.com/go-chi/chi/v5"
)

type postRequest struct {
	Body *string `json:"body"`
}

// postID parses the {id} route parameter. A value that is not an integer
// cannot match any row.
func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (api *Api) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POSTS] Create post request has arrived")

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := api.store.CreatePost(r.Context(), req.Body)
	if err != nil {
		api.writeStoreError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (api *Api) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POSTS] Get posts request has arrived")

	posts, err := api.store.ListPosts(r.Context())
	if err != nil {
		api.writeStoreError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (api *Api) GetPostHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POSTS] Get post %s request has arrived", chi.URLParam(r, "id"))

	id, ok := postID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Post wasn't found")
		return
	}

	post, err := api.store.GetPost(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post wasn't found")
		return
	}
	if err != nil {
		api.writeStoreError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (api *Api) UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POSTS] Update post %s request has arrived", chi.URLParam(r, "id"))

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, ok := postID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := api.store.UpdatePost(r.Context(), id, req.Body)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		api.writeStoreError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (api *Api) DeleteAllPostsHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POSTS] Delete all posts request has arrived")

	result, err := api.store.DeleteAllPosts(r.Context())
	if err != nil {
		api.writeStoreError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *Api) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	log.Printf("[POSTS] Delete post %s request has arrived", chi.URLParam(r, "id"))

	id, ok := postID(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := api.store.DeletePost(r.Context(), id); err != nil {
		api.writeStoreError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
