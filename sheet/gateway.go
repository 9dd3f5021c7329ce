package sheet

import "context"

// Gateway is the narrow read/append view of the remote request sheet.
// Implementations give no transactional guarantees.
type Gateway interface {
	ReadAll(ctx context.Context) (Table, error)
	AppendRow(ctx context.Context, row []string) error
}
