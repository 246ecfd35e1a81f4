package services

// WebSocketHub interface for WebSocket communication
type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
}

// Event types pushed to websocket clients.
const (
	EventTransactionPaid    = "transaction_paid"
	EventTransactionUpdated = "transaction_updated"
	EventAnalysisStarted    = "analysis_started"
	EventAnalysisCompleted  = "analysis_completed"
	EventAnalysisFailed     = "analysis_failed"
	EventArtifactsStored    = "artifacts_stored"
)

// statusNotifier publishes lifecycle events. A nil hub drops them.
type statusNotifier struct {
	hub WebSocketHub
}

func (n statusNotifier) send(eventType string, data map[string]interface{}) {
	if n.hub == nil {
		return
	}
	n.hub.Broadcast(eventType, data)
}

func (n statusNotifier) transaction(eventType, transactionID, status, storageStatus string) {
	n.send(eventType, map[string]interface{}{
		"transactionId": transactionID,
		"status":        status,
		"storageStatus": storageStatus,
	})
}

func (n statusNotifier) analysis(eventType, transactionID, sessionID, message string) {
	data := map[string]interface{}{
		"transactionId": transactionID,
		"message":       message,
	}
	if sessionID != "" {
		data["sessionId"] = sessionID
	}
	n.send(eventType, data)
}
