// Package relay forwards contact-form submissions to the configured email
// provider.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/mail"
	"portfolio-backend/internal/types"
)

const maxBodyBytes = 1 << 20

// MailerFactory builds a mailer for one invocation from the current API key.
type MailerFactory func(apiKey string) (mail.Mailer, error)

type Handler struct {
	from      string
	to        string
	apiKey    func() string
	newMailer MailerFactory
}

func NewHandler(from, to string, apiKey func() string, newMailer MailerFactory) *Handler {
	return &Handler{from: from, to: to, apiKey: apiKey, newMailer: newMailer}
}

// New wires the handler to the process environment and the configured provider.
func New(cfg config.Config) *Handler {
	return NewHandler(cfg.ContactFrom, cfg.ContactTo, config.ResendAPIKey, func(apiKey string) (mail.Mailer, error) {
		return mail.New(cfg.MailProvider, apiKey, cfg.SMTP)
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Error: "Method not allowed"})
		return
	}

	sub := decodeSubmission(w, r)
	msg := BuildEmail(h.from, h.to, sub)

	mailer, err := h.newMailer(h.apiKey())
	if err != nil {
		slog.Error("[relay] mailer setup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()
	if err := mailer.Send(ctx, msg); err != nil {
		slog.Error("[relay] send failed", "reason", sub.Reason, "error", err)
		writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: mail.ProviderMessage(err)})
		return
	}

	slog.Info("[relay] contact message sent", "reason", sub.Reason)
	writeJSON(w, http.StatusOK, types.SuccessResponse{Success: true})
}

// decodeSubmission reads JSON or form bodies. Nothing is rejected: an
// unreadable body yields an empty submission.
func decodeSubmission(w http.ResponseWriter, r *http.Request) types.ContactSubmission {
	var sub types.ContactSubmission
	if r.Body == nil {
		return sub
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && err != http.ErrNotMultipart {
			slog.Warn("[relay] unreadable form body", "error", err)
		}
		sub = types.ContactSubmission{
			Name:    r.FormValue("name"),
			Email:   r.FormValue("email"),
			Phone:   r.FormValue("phone"),
			Reason:  r.FormValue("reason"),
			Message: r.FormValue("message"),
		}
	default:
		var fields map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			slog.Warn("[relay] unreadable JSON body", "error", err)
			return types.ContactSubmission{}
		}
		sub = types.ContactSubmission{
			Name:    text(fields["name"]),
			Email:   text(fields["email"]),
			Phone:   text(fields["phone"]),
			Reason:  text(fields["reason"]),
			Message: text(fields["message"]),
		}
	}
	return sub
}

// text renders any JSON value as it would print in the email. Numbers keep
// their literal form; missing and null values are empty.
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
