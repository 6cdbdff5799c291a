package rcm

import (
	"context"
	"fmt"

	"github.com/flashbots/fee-manager/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const labelResource = "resource"

// InventorySource counts the stored records.
type InventorySource interface {
	storage.DefaultConfigs
	storage.Proposers
	storage.ProposerPatterns
	storage.MuxConfigs
}

// Inventory exposes the number of stored records per resource as a gauge.
type Inventory struct {
	source  InventorySource
	records *prometheus.GaugeVec
}

func NewInventory(source InventorySource, r prometheus.Registerer) *Inventory {
	return &Inventory{
		source: source,
		records: promauto.With(r).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      "stored_records",
				Help:      "the number of stored records by resource",
			}, []string{labelResource},
		),
	}
}

// Sync refreshes the gauges. It can be used as a SyncFunc.
func (i *Inventory) Sync(ctx context.Context) error {
	one := storage.Page{Limit: 1}

	counts := []struct {
		resource string
		count    func() (int, error)
	}{
		{"default_config", func() (int, error) {
			_, n, err := i.source.ListDefaultConfigs(ctx, storage.DefaultConfigFilter{Page: one})
			return n, err
		}},
		{"proposer", func() (int, error) {
			_, n, err := i.source.ListProposers(ctx, storage.ProposerFilter{Page: one})
			return n, err
		}},
		{"proposer_pattern", func() (int, error) {
			_, n, err := i.source.ListProposerPatterns(ctx, storage.ProposerPatternFilter{Page: one})
			return n, err
		}},
		{"mux_config", func() (int, error) {
			_, n, err := i.source.ListMuxConfigs(ctx, storage.MuxConfigFilter{Page: one})
			return n, err
		}},
	}

	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return fmt.Errorf("%w: count %s: %w", ErrStorage, c.resource, err)
		}
		i.records.WithLabelValues(c.resource).Set(float64(n))
	}

	return nil
}
