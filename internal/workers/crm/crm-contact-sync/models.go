package crmcontactsync

import "time"

type Input struct {
	ContactID string `json:"contactId"`
}

type Output struct {
	Success     bool      `json:"crmSynced"`
	Message     string    `json:"crmMessage"`
	CRMID       string    `json:"crmContactId,omitempty"`
	Created     bool      `json:"crmCreated"`
	CRMProvider string    `json:"crmProvider,omitempty"`
	SyncedAt    time.Time `json:"crmSyncedAt,omitempty"`
}
