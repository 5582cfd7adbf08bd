package connectors

import "github.com/Rynawkin/bakircilar-b2b-sub003/internal"

type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
