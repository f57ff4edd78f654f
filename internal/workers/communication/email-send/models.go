package emailsend

import "time"

type Input struct {
	From     string                 `json:"from,omitempty"`
	To       string                 `json:"to"`
	CC       string                 `json:"cc,omitempty"`
	BCC      string                 `json:"bcc,omitempty"`
	ReplyTo  string                 `json:"replyTo,omitempty"`
	Subject  string                 `json:"subject"`
	Body     string                 `json:"body"`
	IsHTML   bool                   `json:"isHtml"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}
