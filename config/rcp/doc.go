// Package rcp contains Relay Config Provider clients which move fee configuration in and out of the service.
//
// File reads a seed file holding default configs, proposers, proposer patterns and mux configs, and Import applies
// it to a store. Importing is idempotent: records are created when missing and updated otherwise.
//
// JSONAPI queries the public endpoints of a running service for an execution config or a mux key set.
//
// An example of a valid seed file maybe found at /testdata/valid-seed.json.
package rcp
