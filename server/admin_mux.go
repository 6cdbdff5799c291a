package server

import (
	"net/http"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/storage"
	"github.com/gorilla/mux"
)

func (m *Service) handleListMuxConfigs(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	q := newQueryParser(req.URL.Query())
	filter := storage.MuxConfigFilter{
		Name: q.string("name"),
		Page: q.page(),
	}
	if q.err != nil {
		m.respondError(w, log, q.err)
		return
	}

	configs, total, err := m.store.ListMuxConfigs(req.Context(), filter)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	data := make([]dto.MuxConfigListItem, 0, len(configs))
	for _, cfg := range configs {
		data = append(data, cfg.ListItem())
	}

	m.respondOK(w, listResponse(data, total, filter.Page))
}

func (m *Service) handleCreateMuxConfig(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	var payload dto.MuxConfigRequest
	if err := m.decodeBody(w, req, &payload); err != nil {
		m.respondError(w, log, err)
		return
	}

	cfg, err := storage.NewMuxConfig(payload)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	created, err := m.store.CreateMuxConfig(req.Context(), cfg)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionCreate,
		ResourceType: audit.ResourceMuxConfig,
		ResourceID:   created.Name,
		Changes:      keyCountChanges(created.Name, len(created.Keys)),
	})
	m.respondCreated(w, created.Response())
}

func (m *Service) handleGetMuxConfig(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	cfg, err := m.store.GetMuxConfig(req.Context(), name)
	if err != nil {
		m.respondError(w, m.requestLog(req), err)
		return
	}

	m.respondOK(w, cfg.Response())
}

// handleReplaceMuxConfig replaces the whole key set of a mux config.
func (m *Service) handleReplaceMuxConfig(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("name", name)

	var payload dto.MuxConfigRequest
	if err := m.decodeBody(w, req, &payload); err != nil {
		m.respondError(w, log, err)
		return
	}
	if err := checkName(name, payload.Name); err != nil {
		m.respondError(w, log, err)
		return
	}

	keys, err := storage.NormalizeKeys(payload.Keys)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	updated, err := m.store.ReplaceMuxKeys(req.Context(), name, keys)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionUpdate,
		ResourceType: audit.ResourceMuxConfig,
		ResourceID:   updated.Name,
		Changes:      keyCountChanges(updated.Name, len(updated.Keys)),
	})
	m.respondOK(w, updated.Response())
}

func (m *Service) handleDeleteMuxConfig(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("name", name)

	if err := m.store.DeleteMuxConfig(req.Context(), name); err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionDelete,
		ResourceType: audit.ResourceMuxConfig,
		ResourceID:   name,
	})
	m.respondNoContent(w)
}

// decodeMuxKeys reads and validates the keys of an add or remove request.
func (m *Service) decodeMuxKeys(w http.ResponseWriter, req *http.Request) ([]string, error) {
	var payload dto.MuxKeysRequest
	if err := m.decodeBody(w, req, &payload); err != nil {
		return nil, err
	}

	return storage.NormalizeKeys(payload.Keys)
}

func (m *Service) handleAddMuxKeys(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("name", name)

	keys, err := m.decodeMuxKeys(w, req)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	added, total, err := m.store.AddMuxKeys(req.Context(), name, keys)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionAddKeys,
		ResourceType: audit.ResourceMuxConfig,
		ResourceID:   name,
		Changes:      keyCountChanges(name, added),
	})
	m.respondOK(w, dto.MuxKeysResponse{Added: &added, TotalKeys: total})
}

func (m *Service) handleRemoveMuxKeys(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("name", name)

	keys, err := m.decodeMuxKeys(w, req)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	removed, total, err := m.store.RemoveMuxKeys(req.Context(), name, keys)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionRemoveKeys,
		ResourceType: audit.ResourceMuxConfig,
		ResourceID:   name,
		Changes:      keyCountChanges(name, removed),
	})
	m.respondOK(w, dto.MuxKeysResponse{Removed: &removed, TotalKeys: total})
}
