package signing

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownDocument signals the document id is not part of the package.
	ErrUnknownDocument = errors.New("signing: document not in package")
	// ErrOutOfOrder signals an attempt to sign past the current sequence
	// position. Client-held order is never trusted; this check runs against
	// the persisted items on every sign.
	ErrOutOfOrder = errors.New("signing: document out of order")
)

// sortByPosition orders items by their package position. Repository reads
// already come back ordered; this keeps the pure helpers safe on any input.
func sortByPosition(items []DocumentItem) []DocumentItem {
	sorted := make([]DocumentItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	return sorted
}

// NextPending returns the document at the current sequence position, or nil
// when every item is signed.
func NextPending(items []DocumentItem) *DocumentItem {
	for _, item := range sortByPosition(items) {
		if item.Status != ItemSigned {
			next := item
			return &next
		}
	}
	return nil
}

// AllSigned reports package completion: every item signed, required and
// optional alike.
func AllSigned(items []DocumentItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Status != ItemSigned {
			return false
		}
	}
	return true
}

// CountProgress returns the display-only signed/total ratio.
func CountProgress(items []DocumentItem) Progress {
	p := Progress{Total: len(items)}
	for _, item := range items {
		if item.Status == ItemSigned {
			p.Signed++
		}
	}
	return p
}

// CheckSignable decides what signing documentID means given the persisted
// items: a retry of an already-signed item (idempotent success), the item at
// the current position (proceed), or an out-of-order attempt (rejected).
func CheckSignable(items []DocumentItem, documentID string) (item DocumentItem, alreadySigned bool, err error) {
	var found *DocumentItem
	for i := range items {
		if items[i].ID == documentID {
			found = &items[i]
			break
		}
	}
	if found == nil {
		return DocumentItem{}, false, fmt.Errorf("%w: %s", ErrUnknownDocument, documentID)
	}
	if found.Status == ItemSigned {
		return *found, true, nil
	}

	current := NextPending(items)
	if current == nil || current.ID != found.ID {
		currentID := ""
		if current != nil {
			currentID = current.ID
		}
		return DocumentItem{}, false, fmt.Errorf("%w: %s is not the current document (%s)", ErrOutOfOrder, documentID, currentID)
	}
	return *found, false, nil
}
