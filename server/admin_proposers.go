package server

import (
	"fmt"
	"net/http"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/storage"
	"github.com/flashbots/fee-manager/types"
	"github.com/gorilla/mux"
)

// proposerKey reads the public key path variable in its stored lowercase form.
func proposerKey(req *http.Request) (string, error) {
	key, err := types.NormalizePublicKey(mux.Vars(req)["public_key"])
	if err != nil {
		return "", fmt.Errorf("%w: %w", storage.ErrInvalidInput, err)
	}

	return key, nil
}

func (m *Service) handleListProposers(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	q := newQueryParser(req.URL.Query())
	filter := storage.ProposerFilter{
		PublicKey:     q.lower("public_key"),
		FeeRecipient:  q.parsed("fee_recipient", types.NormalizeAddress),
		GasLimit:      q.parsed("gas_limit", types.ParseGasLimit),
		MinValue:      q.parsed("min_value", types.ParseMinValue),
		ResetRelays:   q.bool("reset_relays"),
		RelayURL:      q.string("relay_url"),
		RelayMinValue: q.parsed("relay_min_value", types.ParseMinValue),
		RelayDisabled: q.bool("relay_disabled"),
		Page:          q.page(),
	}
	if q.err != nil {
		m.respondError(w, log, q.err)
		return
	}

	proposers, total, err := m.store.ListProposers(req.Context(), filter)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	data := make([]dto.ProposerResponse, 0, len(proposers))
	for _, p := range proposers {
		data = append(data, p.Response())
	}

	m.respondOK(w, listResponse(data, total, filter.Page))
}

func (m *Service) handleGetProposer(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	key, err := proposerKey(req)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	p, err := m.store.GetProposer(req.Context(), key)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	m.respondOK(w, p.Response())
}

// handlePutProposer creates or replaces the proposer of the path key.
func (m *Service) handlePutProposer(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	var payload dto.ProposerRequest
	if err := m.decodeBody(w, req, &payload); err != nil {
		m.respondError(w, log, err)
		return
	}

	p, err := storage.NewProposer(mux.Vars(req)["public_key"], payload)
	if err != nil {
		m.respondError(w, log, err)
		return
	}
	log = log.WithField("public_key", p.PublicKey)

	stored, created, err := m.store.PutProposer(req.Context(), p)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	action := audit.ActionUpdate
	if created {
		action = audit.ActionCreate
	}
	m.record(req, log, audit.Event{
		Action:       action,
		ResourceType: audit.ResourceProposer,
		ResourceID:   stored.PublicKey,
		Changes:      recordChanges(stored.Record),
	})

	if created {
		m.respondCreated(w, stored.Response())
		return
	}
	m.respondOK(w, stored.Response())
}

func (m *Service) handleDeleteProposer(w http.ResponseWriter, req *http.Request) {
	log := m.requestLog(req)

	key, err := proposerKey(req)
	if err != nil {
		m.respondError(w, log, err)
		return
	}
	log = log.WithField("public_key", key)

	if err := m.store.DeleteProposer(req.Context(), key); err != nil {
		m.respondError(w, log, err)
		return
	}

	m.record(req, log, audit.Event{
		Action:       audit.ActionDelete,
		ResourceType: audit.ResourceProposer,
		ResourceID:   key,
	})
	m.respondNoContent(w)
}
