package model

// Folder identifies one folder in a mailbox hierarchy.
type Folder struct {
	ID          string
	ChangeKey   string
	DisplayName string
}

// Item carries the two properties the estimator asks the server for.
// HasSize is false when the server omitted the size property for the item.
type Item struct {
	Size    int64
	HasSize bool
}

// MailboxResult is the per-mailbox output record. Error is set only when
// the run continues past a failed mailbox.
type MailboxResult struct {
	Mailbox string `json:"mailbox"`
	SizeMB  int64  `json:"sizeMB"`
	Error   string `json:"error,omitempty"`
}
