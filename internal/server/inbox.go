package server

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/nordlux/elcore/internal/cim"
	messagingdomain "github.com/nordlux/elcore/internal/messaging/domain"
	processdomain "github.com/nordlux/elcore/internal/process/domain"
	"github.com/nordlux/elcore/pkg/apperr"
)

// ReceiveEnvelope accepts a raw CIM document, validates the envelope and
// stores it on the inbox for the dispatcher. Re-delivery of a known mRID
// answers 200 instead of 202.
func (s *Server) ReceiveEnvelope(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		AbortWithError(c, apperr.New(apperr.ErrValidation, "empty request body"))
		return
	}

	env, err := cim.Parse(body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	msg, created, err := s.messagingSvc.Receive(c.Request.Context(), messagingdomain.ReceiveRequest{
		MessageID:       env.Header.MRID,
		DocumentType:    string(env.DocumentType),
		BusinessProcess: businessProcessFor(env),
		SenderGln:       env.Header.Sender.Value,
		ReceiverGln:     env.Header.Receiver.Value,
		Payload:         body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusAccepted
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": gin.H{
		"id":         msg.ID,
		"message_id": msg.MessageID,
		"duplicate":  !created,
	}})
}

// businessProcessFor resolves the BRS behind an envelope. The exact
// (document, process code) pair is unique in the catalog; when only the
// document matches, the lowest BRS number labels the message and the inbound
// router disambiguates on the payload. Response documents (confirm, reject,
// acknowledge) have no catalog entry of their own and route by document type
// alone.
func businessProcessFor(env cim.Envelope) string {
	types := processdomain.SupportedProcesses()
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var documentOnly processdomain.ProcessType
	for _, pt := range types {
		spec, err := processdomain.Catalog(pt)
		if err != nil {
			continue
		}
		if spec.Document != env.DocumentType {
			continue
		}
		if spec.ProcessCode == env.Header.ProcessType.Value {
			return string(pt)
		}
		if documentOnly == "" {
			documentOnly = pt
		}
	}
	return string(documentOnly)
}
