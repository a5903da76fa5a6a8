package handlers

import (
	"net/http"
	"testing"
)

func TestChannelHandler_List(t *testing.T) {
	f := newRouterFixture()

	t.Run("private channels hidden by default", func(t *testing.T) {
		rec := f.doRequest(t, http.MethodGet, "/api/tenants/jamboree26/channels", "alice", nil)
		assertStatus(t, rec, http.StatusOK)

		var body []*channelResponse
		decodeBody(t, rec, &body)
		if len(body) != 1 || body[0].ID != "general" {
			t.Errorf("channels = %+v", body)
		}
	})

	t.Run("private channels on request", func(t *testing.T) {
		rec := f.doRequest(t, http.MethodGet, "/api/tenants/jamboree26/channels?include_private", "alice", nil)
		assertStatus(t, rec, http.StatusOK)

		var body []*channelResponse
		decodeBody(t, rec, &body)
		if len(body) != 2 {
			t.Errorf("expected 2 channels, got %d", len(body))
		}
	})

	t.Run("include_private=true", func(t *testing.T) {
		rec := f.doRequest(t, http.MethodGet, "/api/tenants/jamboree26/channels?include_private=true", "alice", nil)
		assertStatus(t, rec, http.StatusOK)

		var body []*channelResponse
		decodeBody(t, rec, &body)
		if len(body) != 2 {
			t.Errorf("expected 2 channels, got %d", len(body))
		}
	})

	t.Run("include_private=false hides private channels", func(t *testing.T) {
		rec := f.doRequest(t, http.MethodGet, "/api/tenants/jamboree26/channels?include_private=false", "alice", nil)
		assertStatus(t, rec, http.StatusOK)

		var body []*channelResponse
		decodeBody(t, rec, &body)
		if len(body) != 1 || body[0].ID != "general" {
			t.Errorf("channels = %+v", body)
		}
	})
}

func TestChannelHandler_Create(t *testing.T) {
	payload := map[string]interface{}{
		"id":   "news",
		"name": "News",
	}

	t.Run("created", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.doRequest(t, http.MethodPost, "/api/tenants/jamboree26/channels", "alice", payload)
		assertStatus(t, rec, http.StatusCreated)

		var body channelResponse
		decodeBody(t, rec, &body)
		if body.ID != "news" || body.TenantID != "jamboree26" {
			t.Errorf("channel = %+v", body)
		}
		if !body.IsOpen {
			t.Error("channels default to open")
		}
		if body.UpdatedBy != "alice@example.org" {
			t.Errorf("UpdatedBy = %q", body.UpdatedBy)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		f := newRouterFixture()
		dup := map[string]interface{}{"id": "general", "name": "General"}
		rec := f.doRequest(t, http.MethodPost, "/api/tenants/jamboree26/channels", "alice", dup)
		assertStatus(t, rec, http.StatusConflict)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newRouterFixture()
		bad := map[string]interface{}{"id": "Not Valid!", "name": "Bad"}
		rec := f.doRequest(t, http.MethodPost, "/api/tenants/jamboree26/channels", "alice", bad)
		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.doRequest(t, http.MethodPost, "/api/tenants/locked/channels", "alice", payload)
		assertStatus(t, rec, http.StatusForbidden)
	})

	t.Run("admin group allowed", func(t *testing.T) {
		f := newRouterFixture()
		rec := f.doRequest(t, http.MethodPost, "/api/tenants/locked/channels", "alice", payload, "admins")
		assertStatus(t, rec, http.StatusCreated)
	})
}

func TestChannelHandler_Update(t *testing.T) {
	f := newRouterFixture()

	payload := map[string]interface{}{"name": "Renamed", "is_private": true}
	rec := f.doRequest(t, http.MethodPatch, "/api/tenants/jamboree26/channels/general", "alice", payload)
	assertStatus(t, rec, http.StatusOK)

	var body channelResponse
	decodeBody(t, rec, &body)
	if body.Name != "Renamed" || !body.IsPrivate {
		t.Errorf("channel = %+v", body)
	}
	// Untouched fields survive a partial update
	if !body.IsOpen {
		t.Error("IsOpen should be unchanged")
	}
}

func TestChannelHandler_Delete(t *testing.T) {
	f := newRouterFixture()

	rec := f.doRequest(t, http.MethodDelete, "/api/tenants/jamboree26/channels/general", "alice", nil)
	assertStatus(t, rec, http.StatusNoContent)

	rec = f.doRequest(t, http.MethodDelete, "/api/tenants/jamboree26/channels/general", "alice", nil)
	assertStatus(t, rec, http.StatusNotFound)
}
