package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/flashbots/fee-manager/config/pattern"
	"github.com/flashbots/fee-manager/config/rcp/dto"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func (m *Service) handleExecutionConfig(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["config"]
	tags := pattern.ParseTags(req.URL.Query().Get("tags"))

	log := m.requestLog(req).WithField("config", name)

	// an empty body asks for the defaults and the tag-matched patterns only
	var payload dto.ExecutionConfigRequest
	if err := m.decodeBody(w, req, &payload); err != nil && !errors.Is(err, io.EOF) {
		m.respondError(w, log, err)
		return
	}

	log = log.WithFields(logrus.Fields{
		"keys": len(payload.Keys),
		"tags": tags,
	})

	cfg, err := m.resolver.Resolve(req.Context(), name, payload.Keys, tags)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	log.WithField("proposers", len(cfg.Proposers)).Debug("execution config served")
	m.respondOK(w, cfg)
}

func (m *Service) handleMuxKeys(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]
	log := m.requestLog(req).WithField("mux", name)

	keys, err := m.keys.Keys(req.Context(), name)
	if err != nil {
		m.respondError(w, log, err)
		return
	}

	log.WithField("keys", len(keys)).Debug("mux keys served")
	m.respondOK(w, keys)
}
