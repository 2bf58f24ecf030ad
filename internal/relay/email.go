package relay

import (
	"fmt"

	"portfolio-backend/internal/mail"
	"portfolio-backend/internal/types"
)

// BuildEmail renders a submission into the notification email. Field values
// are interpolated as-is.
func BuildEmail(from, to string, sub types.ContactSubmission) mail.Message {
	html := fmt.Sprintf(`
        <h2>New Message from Portfolio</h2>
        <p><strong>Name:</strong> %s</p>
        <p><strong>Email:</strong> %s</p>
        <p><strong>Phone:</strong> %s</p>
        <p><strong>Reason:</strong> %s</p>
        <p><strong>Message:</strong><br>%s</p>
      `, sub.Name, sub.Email, sub.Phone, sub.Reason, sub.Message)

	return mail.Message{
		From:     from,
		To:       []string{to},
		Subject:  "New Contact Message: " + sub.Reason,
		HTMLBody: html,
	}
}
