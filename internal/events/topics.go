package events

// Topic constants for domain events emitted by the drafting session.
const (
	// TopicDraftUpdated fires after every draft mutation: add item, remove
	// item, customer/payment edits, and config changes.
	TopicDraftUpdated = "draft.updated"
	// TopicInvoiceFinalized fires once per archived invoice.
	TopicInvoiceFinalized = "invoice.finalized"
)
