package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/flashbots/fee-manager/audit"
	"github.com/flashbots/fee-manager/config/override"
	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/flashbots/fee-manager/storage"
	"github.com/sirupsen/logrus"
)

var errNameMismatch = errors.New("name in body does not match the path")

// checkName rejects a body name naming another record than the path.
func checkName(path, body string) error {
	body = strings.TrimSpace(body)
	if body != "" && body != path {
		return fmt.Errorf("%w: %w: %q", storage.ErrInvalidInput, errNameMismatch, body)
	}

	return nil
}

func listResponse[T any](data []T, total int, page storage.Page) dto.ListResponse[T] {
	if data == nil {
		data = []T{}
	}

	return dto.ListResponse[T]{
		Data:   data,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}

func (m *Service) respondCreated(w http.ResponseWriter, v any) {
	m.respondJSON(w, http.StatusCreated, v)
}

func (m *Service) respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// record emits the audit event of a successful admin write.
func (m *Service) record(req *http.Request, log *logrus.Entry, ev audit.Event) {
	m.audit.Record(req.Context(), ev)

	log.WithFields(logrus.Fields{
		"action":      ev.Action,
		"resource":    ev.ResourceType,
		"resource_id": ev.ResourceID,
	}).Info("admin write")
}

func recordChanges(rec override.Record) *audit.Changes {
	relays := len(rec.Relays)
	reset := rec.ResetRelays

	return &audit.Changes{
		FeeRecipient: rec.FeeRecipient.OrElse(""),
		GasLimit:     rec.GasLimit.OrElse(""),
		MinValue:     rec.MinValue.OrElse(""),
		ResetRelays:  &reset,
		RelaysCount:  &relays,
	}
}

func defaultConfigChanges(cfg storage.DefaultConfig) *audit.Changes {
	changes := recordChanges(cfg.Record())
	changes.Name = cfg.Name
	changes.ResetRelays = nil
	active := cfg.Active
	changes.Active = &active

	return changes
}

func proposerPatternChanges(p storage.ProposerPattern) *audit.Changes {
	changes := recordChanges(p.Record)
	changes.Name = p.Name
	changes.Pattern = p.Pattern
	changes.Tags = p.Tags

	return changes
}

func keyCountChanges(name string, count int) *audit.Changes {
	return &audit.Changes{Name: name, KeyCount: &count}
}
