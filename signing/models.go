package signing

import "time"

// ItemStatus tracks a document's signing state. Items move pending -> signed
// one way; the only path back is an explicit correction with its own audit
// event, never a silent reversal.
type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemSigned  ItemStatus = "signed"
)

// DocumentItem is one generated document inside a package. Position fixes the
// signing order; the sequencer re-validates it server-side on every sign.
type DocumentItem struct {
	ID        string
	PackageID string
	Type      string
	Required  bool
	Position  int
	Status    ItemStatus
	SignedAt  *time.Time
}

// Package is the ordered set of documents a candidate signs to complete
// onboarding. Created once per accepted offer.
type Package struct {
	ID         string
	EmployeeID string
	Items      []DocumentItem
	CreatedAt  time.Time
}

// ItemSpec describes one document handed back by the generation collaborator.
type ItemSpec struct {
	Type     string
	Required bool
}

// Progress is the display-only signing ratio. Completion logic never uses it;
// the package is complete iff every item is signed.
type Progress struct {
	Signed int
	Total  int
}

// SignResult reports the outcome of one sign call.
type SignResult struct {
	Item            DocumentItem
	AlreadySigned   bool
	PackageComplete bool
	Progress        Progress
}
