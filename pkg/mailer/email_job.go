package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Messages are rendered before they are queued, so the worker only delivers.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

func NewEmailJob(msg Message) EmailJob {
	return EmailJob{To: msg.To, Subject: msg.Subject, Text: msg.Text, HTML: msg.HTML}
}

func (j EmailJob) Message() Message {
	return Message{To: j.To, Subject: j.Subject, Text: j.Text, HTML: j.HTML}
}

// Valid reports whether the job can be delivered at all.
func (j EmailJob) Valid() bool {
	return j.To != "" && j.Subject != "" && (j.Text != "" || j.HTML != "")
}
