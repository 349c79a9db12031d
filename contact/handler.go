package contact

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxBodyBytes = 64 << 10

const failedMessage = "Failed to send message"

var tracer = otel.Tracer("showcase/contact")

// Handler accepts contact form posts and forwards them to Mailer.
type Handler struct {
	Mailer Mailer
	From   string
	To     []string
	Logger *log.Logger
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type successResponse struct {
	Success bool        `json:"success"`
	Data    messageData `json:"data"`
}

type messageData struct {
	ID string `json:"id"`
}

func (h *Handler) logf(format string, args ...any) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	ctx, span := tracer.Start(r.Context(), "contact.submit")
	defer span.End()

	var form Form
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&form); err != nil {
		h.logf("contact form error: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: failedMessage})
		return
	}
	form = form.Normalize()
	span.SetAttributes(attribute.String("contact.unit_volume", form.UnitVolume))

	if err := form.Validate(); err != nil {
		var verr *ValidationError
		errors.As(err, &verr)
		span.SetStatus(codes.Error, "invalid form")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: failedMessage, Fields: verr.Fields})
		return
	}

	email, err := BuildEmail(ctx, form, h.From, h.To)
	if err != nil {
		h.logf("contact form error: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "render")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: failedMessage})
		return
	}

	id, err := h.Mailer.Send(ctx, email)
	if err != nil {
		h.logf("email provider error: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: failedMessage})
		return
	}
	span.SetAttributes(attribute.String("contact.message_id", id))
	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: messageData{ID: id}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
