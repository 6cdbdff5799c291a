package server

import (
	"net/http"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/fee-manager/types"
	"github.com/gorilla/mux"
)

func (m *Service) handleListProposerPatterns(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	q := newQueryParser(req.URL.Query())
	filter := storage.ProposerPatternFilter{
		Name:         q.string("name"),
		Pattern:      q.string("pattern"),
		Tag:          q.string("tag"),
		FeeRecipient: q.parsed("fee_recipient", types.NormalizeAddress),
		GasLimit:     q.parsed("gas_limit", types.ParseGasLimit),
		MinValue:     q.parsed("min_value", types.ParseMinValue),
		ResetRelays:  q.bool("reset_relays"),
		Page:         q.page(),
	}
	if q.err != nil {
		m.respondError(w, log, q.err)
		return
	}

	patterns, total, err := m.store.ListProposerPatterns(req.Context(), filter)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	data := make([]dto.ProposerPatternResponse, 0, len(patterns))
	for _, p := range patterns {
		data = append(data, p.Response())
	}

	m.respondOK(w, listResponse(data, total, filter.Page))
}

func (m *Service) handleCreateProposerPattern(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	var payload dto.ProposerPatternRequest
	if err := m.decodeBody(w, req, &payload); err != nil {
		m.respondError(w, log, err)
		return
	}

	p, err := storage.NewProposerPattern(payload)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	created, err := m.store.CreateProposerPattern(req.Context(), p)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionCreate,
		ResourceType: audit.ResourceProposerPattern,
		ResourceID:   created.Name,
		Changes:      proposerPatternChanges(created),
	})
	m.respondCreated(w, created.Response())
}

func (m *Service) handleGetProposerPattern(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	p, err := m.store.GetProposerPattern(req.Context(), name)
	if err != nil {
		m.respondError(w, m.requestLog(req), err)
		return
	}

	m.respondOK(w, p.Response())
}

func (m *Service) handleUpdateProposerPattern(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("name", name)

	var payload dto.ProposerPatternRequest
	if err := m.decodeBody(w, req, &payload); err != nil {
		m.respondError(w, log, err)
		return
	}
	if err := checkName(name, payload.Name); err != nil {
		m.respondError(w, log, err)
		return
	}

	cur, err := m.store.GetProposerPattern(req.Context(), name)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	p, err := cur.Apply(payload)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	updated, err := m.store.UpdateProposerPattern(req.Context(), p)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionUpdate,
		ResourceType: audit.ResourceProposerPattern,
		ResourceID:   updated.Name,
		Changes:      proposerPatternChanges(updated),
	})
	m.respondOK(w, updated.Response())
}

func (m *Service) handleDeleteProposerPattern(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("name", name)

	if err := m.store.DeleteProposerPattern(req.Context(), name); err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionDelete,
		ResourceType: audit.ResourceProposerPattern,
		ResourceID:   name,
	})
	m.respondNoContent(w)
}
