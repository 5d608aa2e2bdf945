package contact

import (
	"log/slog"
	"net/http"

	"github.com/rikkicasupanan/portfolio/cmd/website/internal/httpjson"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/metrics"
	"github.com/rikkicasupanan/portfolio/pkg/services"
)

type ContactHandlers interface {
	SendMessage(w http.ResponseWriter, r *http.Request)
}

type ContactControllerConfig struct {
	ContactSender services.ContactSender
}

type ContactController struct {
	contactSender services.ContactSender
}

func NewContactController(config ContactControllerConfig) ContactController {
	return ContactController{
		contactSender: config.ContactSender,
	}
}

type sendMessageResponse struct {
	OK bool `json:"ok"`
}

/*
POST /api/contact
*/
func (c ContactController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		message services.ContactMessage
	)

	if err = httpjson.Decode(r, &message); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message = message.Normalized()

	if err = services.ValidateStruct(message); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Missing fields")
		return
	}

	err = c.contactSender.SendContact(message)
	metrics.ContactMessagesTotal.WithLabelValues(metrics.Result(err)).Inc()

	if err != nil {
		slog.Error("error relaying contact message", "error", err)
		httpjson.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpjson.OK(w, sendMessageResponse{OK: true})
}
