package controllers

import (
	"net/http"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/push"
)

// WebSocket upgrades the connection and subscribes the caller to their
// private room and their team's room for the life of the socket.
func WebSocket(hub *push.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor.ID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			// Tenant frontends live on many origins; bearer auth already
			// gates the upgrade.
			InsecureSkipVerify: true,
		})
		if err != nil {
			if logg != nil {
				logg.Warn(r.Context(), "websocket accept failed")
			}
			return
		}

		client := push.NewClient(hub, conn, push.UserRoom(actor.ID), push.TeamRoom(actor.TeamID))
		client.Run(r.Context())
	}
}
