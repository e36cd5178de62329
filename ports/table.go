package ports

import (
	"context"

	"statdesc/domain/table"
)

// TableProvider yields a fully loaded table. Readers for each file format
// implement it; the analysis core depends on nothing else.
type TableProvider interface {
	ReadTable(ctx context.Context) (*table.Table, error)
}
