package server

import (
	"net/http"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/fee-manager/types"
	"github.com/gorilla/mux"
)

func (m *Service) handleListDefaultConfigs(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	q := newQueryParser(req.URL.Query())
	filter := storage.DefaultConfigFilter{
		Name:         q.string("name"),
		FeeRecipient: q.parsed("fee_recipient", types.NormalizeAddress),
		GasLimit:     q.parsed("gas_limit", types.ParseGasLimit),
		MinValue:     q.parsed("min_value", types.ParseMinValue),
		Active:       q.bool("active"),
		Page:         q.page(),
	}
	if q.err != nil {
		m.respondError(w, log, q.err)
		return
	}

	configs, total, err := m.store.ListDefaultConfigs(req.Context(), filter)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	data := make([]dto.DefaultConfigResponse, 0, len(configs))
	for _, cfg := range configs {
		data = append(data, cfg.Response())
	}

	m.respondOK(w, listResponse(data, total, filter.Page))
}

func (m *Service) handleCreateDefaultConfig(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	var payload dto.DefaultConfigRequest
	if err := m.decodeBody(w, req, &payload); err != nil {
		m.respondError(w, log, err)
		return
	}

	cfg, err := storage.NewDefaultConfig(payload)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	created, err := m.store.CreateDefaultConfig(req.Context(), cfg)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionCreate,
		ResourceType: audit.ResourceDefaultConfig,
		ResourceID:   created.Name,
		Changes:      defaultConfigChanges(created),
	})
	m.respondCreated(w, created.Response())
}

func (m *Service) handleGetDefaultConfig(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	cfg, err := m.store.GetDefaultConfig(req.Context(), name)
	if err != nil {
		m.respondError(w, m.requestLog(req), err)
		return
	}

	m.respondOK(w, cfg.Response())
}

func (m *Service) handleUpdateDefaultConfig(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("name", name)

	var payload dto.DefaultConfigRequest
	if err := m.decodeBody(w, req, &payload); err != nil {
		m.respondError(w, log, err)
		return
	}
	if err := checkName(name, payload.Name); err != nil {
		m.respondError(w, log, err)
		return
	}

	cur, err := m.store.GetDefaultConfig(req.Context(), name)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	cfg, err := cur.Apply(payload)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	updated, err := m.store.UpdateDefaultConfig(req.Context(), cfg)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionUpdate,
		ResourceType: audit.ResourceDefaultConfig,
		ResourceID:   updated.Name,
		Changes:      defaultConfigChanges(updated),
	})
	m.respondOK(w, updated.Response())
}

func (m *Service) handleDeleteDefaultConfig(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("name", name)

	if err := m.store.DeleteDefaultConfig(req.Context(), name); err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionDelete,
		ResourceType: audit.ResourceDefaultConfig,
		ResourceID:   name,
	})
	m.respondNoContent(w)
}
