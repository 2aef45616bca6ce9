package accounts

import "time"

// Account represents a business/tenant that owns uploaded content and an
// embeddable widget. IDs are opaque strings minted by the external
// account-management system; nothing here interprets them.
type Account struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Asset is a stored object (image, document, video) owned by an account.
// The object body lives in R2; this row is the metadata the gallery and
// dashboard read.
type Asset struct {
	ID          string
	AccountID   string
	Key         string
	URL         string
	Name        string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}
